// Package netif accumulates interface provisioning requests and
// replays them, in registration order, into a target process's network
// namespace over rtnetlink.
package netif

import (
	"context"
	"fmt"

	"github.com/Scalingo/go-utils/logger"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/errgo.v1"

	"github.com/nsif/nsif/api/types"
	"github.com/nsif/nsif/config"
	"github.com/nsif/nsif/nlsock"
)

// Provisioner owns an ordered queue of interface requests. Register
// queues them without network activity; Setup drains the queue exactly
// once against a target pid. SetupLoopback is independent of the queue
// and acts on the caller's current namespace.
type Provisioner interface {
	Register(action types.Netif)
	Setup(ctx context.Context, pid int) error
	SetupLoopback(ctx context.Context) error
}

type provisioner struct {
	config   *config.Config
	resolver Resolver
	dial     func() (Conn, error)
	pending  []types.Netif
}

func NewProvisioner(c *config.Config) Provisioner {
	return &provisioner{
		config:   c,
		resolver: NewResolver(),
		dial: func() (Conn, error) {
			return nlsock.Open()
		},
	}
}

func (p *provisioner) Register(action types.Netif) {
	p.pending = append(p.pending, action)
}

// Setup processes every registered action in registration order: each
// one resolves or creates its kernel interface, then is moved into the
// namespace of pid under its target name. The queue is consumed even
// on failure; any error aborts the sequence with no rollback of
// interfaces already moved.
func (p *provisioner) Setup(ctx context.Context, pid int) error {
	if len(p.pending) == 0 {
		return nil
	}
	actions := p.pending
	p.pending = nil

	log := logger.Get(ctx)

	conn, err := p.dial()
	if err != nil {
		return errors.Wrap(err, "fail to open netlink session")
	}
	defer conn.Close()

	for _, action := range actions {
		log.WithFields(logrus.Fields{
			"kind": action.Kind, "source": action.Source, "target_name": action.TargetName,
		}).Info("provisioning interface")

		index, err := p.prepare(conn, pid, action)
		if err != nil {
			return err
		}
		err = p.moveAndRename(conn, pid, index, action.TargetName)
		if err != nil {
			return errors.Wrapf(err, "fail to move %v into namespace of pid %d", action, pid)
		}
	}
	return nil
}

// prepare obtains the kernel index of the interface an action is
// about, creating it first when the kind asks for it.
func (p *provisioner) prepare(conn Conn, pid int, action types.Netif) (int32, error) {
	switch action.Kind {
	case types.NetifKindMove:
		return p.resolver.IndexByName(action.Source)
	case types.NetifKindMacVlan:
		master, err := p.resolver.IndexByName(action.Source)
		if err != nil {
			return 0, err
		}
		name := p.transientName(pid)
		err = p.createMacvlan(conn, master, name)
		if err != nil {
			return 0, errors.Wrapf(err, "fail to create macvlan slave of %s", action.Source)
		}
		return p.resolver.IndexByName(name)
	case types.NetifKindVeth:
		name := p.transientName(pid)
		err := p.createVethPair(conn, action.Source, name)
		if err != nil {
			return 0, errors.Wrapf(err, "fail to create veth pair %s/%s", action.Source, name)
		}
		return p.resolver.IndexByName(name)
	}
	return 0, errgo.Newf("unknown interface kind %q", action.Kind)
}

// SetupLoopback brings lo up in the current namespace. The index is
// fixed, never resolved by name.
func (p *provisioner) SetupLoopback(ctx context.Context) error {
	logger.Get(ctx).Info("bringing loopback up")

	conn, err := p.dial()
	if err != nil {
		return errors.Wrap(err, "fail to open netlink session")
	}
	defer conn.Close()

	err = p.linkUp(conn, LoopbackIndex)
	if err != nil {
		return errors.Wrap(err, "fail to bring loopback up")
	}
	return nil
}

// transientName is the deterministic name a created interface carries
// until move-and-rename gives it its final one.
func (p *provisioner) transientName(pid int) string {
	return fmt.Sprintf("%s%d", p.config.NetifPrefix, pid)
}
