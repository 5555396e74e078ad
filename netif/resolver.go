package netif

import (
	"net"

	"github.com/pkg/errors"
)

// ErrNotFound is the cause of every failed name to index resolution.
var ErrNotFound = errors.New("network interface not found")

// Resolver maps an interface name to its kernel index in the current
// namespace.
type Resolver interface {
	IndexByName(name string) (int32, error)
}

type netResolver struct{}

// NewResolver returns the stdlib-backed resolver.
func NewResolver() Resolver {
	return netResolver{}
}

func (netResolver) IndexByName(name string) (int32, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return 0, errors.Wrapf(ErrNotFound, "fail to resolve interface %q", name)
	}
	return int32(iface.Index), nil
}
