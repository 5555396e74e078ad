package netif

import (
	"golang.org/x/sys/unix"

	"github.com/nsif/nsif/nlmsg"
)

// VethInfoPeer is VETH_INFO_PEER from <linux/veth.h>, which x/sys/unix
// does not export.
const VethInfoPeer = 0x1

// LoopbackIndex is the well-known kernel index of lo.
const LoopbackIndex = 1

func (p *provisioner) newMessage() *nlmsg.Message {
	return nlmsg.New(p.config.NetlinkBufferSize)
}

// linkUp sets IFF_UP on an interface of the current namespace.
func (p *provisioner) linkUp(conn Conn, index int32) error {
	m := p.newMessage()
	m.SetHeader(unix.RTM_NEWLINK, unix.NLM_F_REQUEST|unix.NLM_F_ACK, 0)
	m.SetLink(unix.AF_UNSPEC, index, unix.IFF_UP, unix.IFF_UP)
	return conn.Exchange(m)
}

// moveAndRename reassociates the interface with the network namespace
// of pid and gives it its final name, in a single request. The kernel
// performs the namespace switch as a side effect of IFLA_NET_NS_PID.
func (p *provisioner) moveAndRename(conn Conn, pid int, index int32, name string) error {
	m := p.newMessage()
	m.SetHeader(unix.RTM_NEWLINK, unix.NLM_F_REQUEST|unix.NLM_F_ACK, 0)
	m.SetLink(unix.AF_UNSPEC, index, 0, 0)
	if err := m.AppendUint32(unix.IFLA_NET_NS_PID, uint32(pid)); err != nil {
		return err
	}
	if err := m.AppendString(unix.IFLA_IFNAME, name); err != nil {
		return err
	}
	return conn.Exchange(m)
}

// createMacvlan creates a macvlan slave of the master index.
func (p *provisioner) createMacvlan(conn Conn, master int32, name string) error {
	m := p.newMessage()
	m.SetHeader(unix.RTM_NEWLINK,
		unix.NLM_F_REQUEST|unix.NLM_F_ACK|unix.NLM_F_CREATE|unix.NLM_F_EXCL, 0)
	m.SetLink(unix.AF_UNSPEC, 0, 0, 0)

	info, err := m.BeginNested(unix.IFLA_LINKINFO)
	if err != nil {
		return err
	}
	if err := m.AppendString(unix.IFLA_INFO_KIND, "macvlan"); err != nil {
		return err
	}
	m.EndNested(info)

	if err := m.AppendInt32(unix.IFLA_LINK, master); err != nil {
		return err
	}
	if err := m.AppendString(unix.IFLA_IFNAME, name); err != nil {
		return err
	}
	return conn.Exchange(m)
}

// createVethPair creates a veth pair. The peer is described as a full
// embedded link body plus its name attribute, nested under
// linkinfo/info-data/peer; every enclosing length must span that body.
func (p *provisioner) createVethPair(conn Conn, nameOut, nameIn string) error {
	m := p.newMessage()
	m.SetHeader(unix.RTM_NEWLINK,
		unix.NLM_F_REQUEST|unix.NLM_F_ACK|unix.NLM_F_CREATE|unix.NLM_F_EXCL, 0)
	m.SetLink(unix.AF_UNSPEC, 0, 0, 0)

	info, err := m.BeginNested(unix.IFLA_LINKINFO)
	if err != nil {
		return err
	}
	if err := m.AppendString(unix.IFLA_INFO_KIND, "veth"); err != nil {
		return err
	}

	data, err := m.BeginNested(unix.IFLA_INFO_DATA)
	if err != nil {
		return err
	}
	peer, err := m.BeginNested(VethInfoPeer)
	if err != nil {
		return err
	}
	if err := m.EmbedLinkBody(unix.AF_UNSPEC); err != nil {
		return err
	}
	if err := m.AppendString(unix.IFLA_IFNAME, nameIn); err != nil {
		return err
	}
	m.EndNested(peer)
	m.EndNested(data)
	m.EndNested(info)

	if err := m.AppendString(unix.IFLA_IFNAME, nameOut); err != nil {
		return err
	}
	return conn.Exchange(m)
}
