package netif

import "github.com/nsif/nsif/nlmsg"

// Conn performs synchronous rtnetlink request/reply exchanges. It is
// implemented by *nlsock.Session and mocked in tests.
type Conn interface {
	Exchange(req *nlmsg.Message) error
	Close() error
}
