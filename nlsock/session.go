// Package nlsock owns the raw NETLINK_ROUTE socket and the synchronous
// request/reply exchange. One session holds one socket and allows a
// single request in flight; concurrent provisioning flows must each
// open their own session so sequence numbers cannot cross.
package nlsock

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/nsif/nsif/nlmsg"
)

// Session is a bound rtnetlink socket used for sequential exchanges.
type Session struct {
	fd  int
	pid uint32
	seq uint32
}

// Open creates a routing-family raw socket bound to the calling
// process, with no multicast group subscriptions.
func Open() (*Session, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW, unix.NETLINK_ROUTE)
	if err != nil {
		return nil, errors.Wrap(err, "fail to open netlink socket")
	}

	pid := uint32(os.Getpid())
	err = unix.Bind(fd, &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Pid: pid})
	if err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "fail to bind netlink socket")
	}

	return &Session{fd: fd, pid: pid}, nil
}

func (s *Session) Close() error {
	return unix.Close(s.fd)
}

// Exchange sends the encoded request as one datagram and blocks for
// the kernel's reply, received into the same buffer. Requests always
// carry NLM_F_ACK and never dump, so exactly one reply comes back: a
// generic ack or an error record.
func (s *Session) Exchange(req *nlmsg.Message) error {
	s.seq++
	req.SetSeq(s.seq)

	err := unix.Sendto(s.fd, req.Bytes(), 0, &unix.SockaddrNetlink{Family: unix.AF_NETLINK})
	if err != nil {
		return errors.Wrap(err, "fail to send netlink request")
	}

	n, _, err := unix.Recvfrom(s.fd, req.Buffer(), 0)
	if err != nil {
		return errors.Wrap(err, "fail to receive netlink reply")
	}

	return s.checkReply(req, n)
}

func (s *Session) checkReply(reply *nlmsg.Message, n int) error {
	if n < nlmsg.HdrLen {
		return errors.Errorf("short netlink reply of %d bytes", n)
	}
	reply.SetReceived(n)

	if seq := reply.Seq(); seq != s.seq {
		return errors.Errorf("netlink reply out of sequence: got %d, want %d", seq, s.seq)
	}
	if pid := reply.Pid(); pid != s.pid {
		return errors.Errorf("netlink reply for port %d, want %d", pid, s.pid)
	}

	if reply.Type() == unix.NLMSG_ERROR {
		if code := reply.ErrCode(); code < 0 {
			return NetlinkError{Errno: unix.Errno(-code)}
		}
	}
	return nil
}
