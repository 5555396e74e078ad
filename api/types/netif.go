package types

import "fmt"

type NetifKind string

const (
	// NetifKindMove moves an existing interface into the target
	// namespace.
	NetifKindMove NetifKind = "move"
	// NetifKindMacVlan creates a macvlan slave of a master interface,
	// then moves the slave.
	NetifKindMacVlan NetifKind = "macvlan"
	// NetifKindVeth creates a veth pair, leaves one end outside and
	// moves the other.
	NetifKindVeth NetifKind = "veth"
)

// Netif is one pending interface provisioning request. Source is the
// interface to move (move), the master interface (macvlan) or the name
// of the outward-facing peer (veth). TargetName is the name the
// interface must end up with inside the target namespace. Values are
// immutable once registered and consumed at most once.
type Netif struct {
	Kind       NetifKind `json:"kind"`
	Source     string    `json:"source"`
	TargetName string    `json:"target_name"`
}

func (n Netif) String() string {
	return fmt.Sprintf("Netif[%s|%s->%s]", n.Kind, n.Source, n.TargetName)
}
