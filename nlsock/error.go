package nlsock

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// NetlinkError is a negative acknowledgement from the kernel, carrying
// the errno it answered with.
type NetlinkError struct {
	Errno unix.Errno
}

func (e NetlinkError) Error() string {
	return fmt.Sprintf("netlink request rejected: %v", e.Errno)
}
