package netif

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/nsif/nsif/api/types"
	"github.com/nsif/nsif/config"
	"github.com/nsif/nsif/nlmsg"
	"github.com/nsif/nsif/nlsock"
	"github.com/nsif/nsif/test/mocks/netifmock"
)

type sentAttr struct {
	typ   uint16
	value []byte
}

type sentRequest struct {
	typ       uint16
	flags     uint16
	index     int32
	linkFlags uint32
	change    uint32
	attrs     []sentAttr
}

func decodeRequest(m *nlmsg.Message) sentRequest {
	r := sentRequest{
		typ:       m.Type(),
		flags:     m.Flags(),
		index:     m.Index(),
		linkFlags: m.LinkFlags(),
		change:    m.ChangeMask(),
	}
	nlmsg.ForEachAttr(m.AttrBytes(), func(typ uint16, value []byte) {
		r.attrs = append(r.attrs, sentAttr{typ, append([]byte(nil), value...)})
	})
	return r
}

func (r sentRequest) attr(typ uint16) []byte {
	for _, a := range r.attrs {
		if a.typ == typ {
			return a.value
		}
	}
	return nil
}

func testProvisioner(conn Conn, resolver Resolver) *provisioner {
	return &provisioner{
		config:   &config.Config{NetifPrefix: "nsif-", NetlinkBufferSize: 4096},
		resolver: resolver,
		dial: func() (Conn, error) {
			return conn, nil
		},
	}
}

func recordExchanges(conn *netifmock.MockConn, sent *[]sentRequest, times int) {
	conn.EXPECT().Exchange(gomock.Any()).DoAndReturn(func(m *nlmsg.Message) error {
		*sent = append(*sent, decodeRequest(m))
		return nil
	}).Times(times)
	conn.EXPECT().Close().Return(nil)
}

func TestProvisioner_Setup_Scenario(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn := netifmock.NewMockConn(ctrl)
	resolver := netifmock.NewMockResolver(ctrl)
	p := testProvisioner(conn, resolver)

	p.Register(types.Netif{Kind: types.NetifKindMove, Source: "eth0", TargetName: "wan"})
	p.Register(types.Netif{Kind: types.NetifKindMacVlan, Source: "eth0", TargetName: "mv0"})
	p.Register(types.Netif{Kind: types.NetifKindVeth, Source: "veth-out", TargetName: "veth-in"})

	gomock.InOrder(
		resolver.EXPECT().IndexByName("eth0").Return(int32(2), nil),
		resolver.EXPECT().IndexByName("eth0").Return(int32(2), nil),
		resolver.EXPECT().IndexByName("nsif-4242").Return(int32(7), nil),
		resolver.EXPECT().IndexByName("nsif-4242").Return(int32(8), nil),
	)

	var sent []sentRequest
	recordExchanges(conn, &sent, 5)

	require.NoError(t, p.Setup(context.Background(), 4242))
	require.Len(t, sent, 5)

	for _, r := range sent {
		assert.Equal(t, uint16(unix.RTM_NEWLINK), r.typ)
	}

	// 1: eth0 moved as wan
	move := sent[0]
	assert.Equal(t, uint16(unix.NLM_F_REQUEST|unix.NLM_F_ACK), move.flags)
	assert.Equal(t, int32(2), move.index)
	assert.Equal(t, uint32(4242), nlmsg.Uint32(move.attr(unix.IFLA_NET_NS_PID)))
	assert.Equal(t, "wan", nlmsg.Kstring(move.attr(unix.IFLA_IFNAME)))

	// 2: macvlan slave created under its transient name
	create := sent[1]
	assert.Equal(t, uint16(unix.NLM_F_REQUEST|unix.NLM_F_ACK|unix.NLM_F_CREATE|unix.NLM_F_EXCL), create.flags)
	assert.Equal(t, int32(0), create.index)
	assert.Equal(t, int32(2), nlmsg.Int32(create.attr(unix.IFLA_LINK)))
	assert.Equal(t, "nsif-4242", nlmsg.Kstring(create.attr(unix.IFLA_IFNAME)))
	var kind string
	nlmsg.ForEachAttr(create.attr(unix.IFLA_LINKINFO), func(typ uint16, value []byte) {
		if typ == unix.IFLA_INFO_KIND {
			kind = nlmsg.Kstring(value)
		}
	})
	assert.Equal(t, "macvlan", kind)

	// 3: the slave moved as mv0
	move = sent[2]
	assert.Equal(t, int32(7), move.index)
	assert.Equal(t, uint32(4242), nlmsg.Uint32(move.attr(unix.IFLA_NET_NS_PID)))
	assert.Equal(t, "mv0", nlmsg.Kstring(move.attr(unix.IFLA_IFNAME)))

	// 4: veth pair created, outward end keeps its name
	create = sent[3]
	assert.Equal(t, uint16(unix.NLM_F_REQUEST|unix.NLM_F_ACK|unix.NLM_F_CREATE|unix.NLM_F_EXCL), create.flags)
	assert.Equal(t, "veth-out", nlmsg.Kstring(create.attr(unix.IFLA_IFNAME)))
	var peerName string
	nlmsg.ForEachAttr(create.attr(unix.IFLA_LINKINFO), func(typ uint16, value []byte) {
		switch typ {
		case unix.IFLA_INFO_KIND:
			kind = nlmsg.Kstring(value)
		case unix.IFLA_INFO_DATA:
			nlmsg.ForEachAttr(value, func(typ uint16, value []byte) {
				if typ == VethInfoPeer {
					// embedded link body first, then the peer's attributes
					require.True(t, len(value) > nlmsg.BodyLen)
					nlmsg.ForEachAttr(value[nlmsg.BodyLen:], func(typ uint16, value []byte) {
						if typ == unix.IFLA_IFNAME {
							peerName = nlmsg.Kstring(value)
						}
					})
				}
			})
		}
	})
	assert.Equal(t, "veth", kind)
	assert.Equal(t, "nsif-4242", peerName)

	// 5: the inward end moved as veth-in
	move = sent[4]
	assert.Equal(t, int32(8), move.index)
	assert.Equal(t, uint32(4242), nlmsg.Uint32(move.attr(unix.IFLA_NET_NS_PID)))
	assert.Equal(t, "veth-in", nlmsg.Kstring(move.attr(unix.IFLA_IFNAME)))

	// the queue is consumed, a second setup is a no-op
	require.NoError(t, p.Setup(context.Background(), 4242))
}

func TestProvisioner_Setup_FIFOOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn := netifmock.NewMockConn(ctrl)
	resolver := netifmock.NewMockResolver(ctrl)
	p := testProvisioner(conn, resolver)

	names := []string{"if0", "if1", "if2", "if3"}
	for i, name := range names {
		p.Register(types.Netif{Kind: types.NetifKindMove, Source: name, TargetName: name + "-in"})
		resolver.EXPECT().IndexByName(name).Return(int32(10+i), nil)
	}

	var sent []sentRequest
	recordExchanges(conn, &sent, len(names))

	require.NoError(t, p.Setup(context.Background(), 1234))
	require.Len(t, sent, len(names))
	for i, name := range names {
		assert.Equal(t, int32(10+i), sent[i].index)
		assert.Equal(t, name+"-in", nlmsg.Kstring(sent[i].attr(unix.IFLA_IFNAME)))
	}
}

func TestProvisioner_Setup_InterfaceNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn := netifmock.NewMockConn(ctrl)
	resolver := netifmock.NewMockResolver(ctrl)
	p := testProvisioner(conn, resolver)

	p.Register(types.Netif{Kind: types.NetifKindMove, Source: "ghost0", TargetName: "wan"})

	resolver.EXPECT().IndexByName("ghost0").
		Return(int32(0), errors.Wrapf(ErrNotFound, "fail to resolve interface %q", "ghost0"))
	conn.EXPECT().Close().Return(nil)

	err := p.Setup(context.Background(), 1234)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "ghost0")
}

func TestProvisioner_Setup_KernelRejection(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn := netifmock.NewMockConn(ctrl)
	resolver := netifmock.NewMockResolver(ctrl)
	p := testProvisioner(conn, resolver)

	// the first action is rejected, the remaining ones must not run
	p.Register(types.Netif{Kind: types.NetifKindMove, Source: "eth0", TargetName: "wan"})
	p.Register(types.Netif{Kind: types.NetifKindMove, Source: "eth1", TargetName: "lan"})

	resolver.EXPECT().IndexByName("eth0").Return(int32(2), nil)
	conn.EXPECT().Exchange(gomock.Any()).Return(nlsock.NetlinkError{Errno: unix.EPERM})
	conn.EXPECT().Close().Return(nil)

	err := p.Setup(context.Background(), 1234)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "operation not permitted")
}

func TestProvisioner_Setup_UnknownKind(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn := netifmock.NewMockConn(ctrl)
	resolver := netifmock.NewMockResolver(ctrl)
	p := testProvisioner(conn, resolver)

	p.Register(types.Netif{Kind: types.NetifKind("bond"), Source: "eth0", TargetName: "b0"})
	conn.EXPECT().Close().Return(nil)

	err := p.Setup(context.Background(), 1234)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown interface kind")
}

func TestProvisioner_Setup_EmptyQueue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// no dial, no exchange
	p := testProvisioner(netifmock.NewMockConn(ctrl), netifmock.NewMockResolver(ctrl))
	require.NoError(t, p.Setup(context.Background(), 1234))
}

func TestProvisioner_SetupLoopback(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn := netifmock.NewMockConn(ctrl)
	// the loopback index is fixed, nothing is resolved by name
	p := testProvisioner(conn, netifmock.NewMockResolver(ctrl))

	var sent []sentRequest
	recordExchanges(conn, &sent, 1)

	require.NoError(t, p.SetupLoopback(context.Background()))
	require.Len(t, sent, 1)

	up := sent[0]
	assert.Equal(t, uint16(unix.RTM_NEWLINK), up.typ)
	assert.Equal(t, uint16(unix.NLM_F_REQUEST|unix.NLM_F_ACK), up.flags)
	assert.Equal(t, int32(LoopbackIndex), up.index)
	assert.Equal(t, uint32(unix.IFF_UP), up.linkFlags)
	assert.Equal(t, uint32(unix.IFF_UP), up.change)
	assert.Empty(t, up.attrs)
}
