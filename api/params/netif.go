package params

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/nsif/nsif/api/types"
)

// ParseNetifSpec turns a comma-separated interface specification into
// a validated request:
//
//	IFACE,NAME          move IFACE into the namespace as NAME
//	macvlan,MASTER,NAME macvlan slave of MASTER, named NAME inside
//	veth,OUT,IN         veth pair, OUT stays outside, IN moves inside
//
// Whether the fields name real interfaces is checked at provisioning
// time, not here.
func ParseNetifSpec(spec string) (types.Netif, error) {
	fields := strings.Split(spec, ",")
	switch fields[0] {
	case "macvlan", "veth":
		if len(fields) != 3 || fields[1] == "" || fields[2] == "" {
			return types.Netif{}, errors.Errorf("invalid netif spec %q", spec)
		}
		return types.Netif{
			Kind:       types.NetifKind(fields[0]),
			Source:     fields[1],
			TargetName: fields[2],
		}, nil
	default:
		if len(fields) != 2 || fields[0] == "" || fields[1] == "" {
			return types.Netif{}, errors.Errorf("invalid netif spec %q", spec)
		}
		return types.Netif{
			Kind:       types.NetifKindMove,
			Source:     fields[0],
			TargetName: fields[1],
		}, nil
	}
}
