package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"github.com/vishvananda/netns"

	"github.com/nsif/nsif/api/params"
	"github.com/nsif/nsif/netif"
	"github.com/nsif/nsif/netnsbuilder"
)

func (a *App) Provision(c *cli.Context) error {
	pid := c.Int("pid")
	if pid <= 0 {
		return cli.NewExitError("a target pid is required", 1)
	}

	err := ensureForeignNamespace(pid)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	p, err := a.registeredProvisioner(c)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	err = p.Setup(appContext(), pid)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	return nil
}

func (a *App) Sandbox(c *cli.Context) error {
	p, err := a.registeredProvisioner(c)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	err = netnsbuilder.NewManager(a.config).Run(appContext(),
		func(ctx context.Context, pid int) error {
			return p.Setup(ctx, pid)
		},
	)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	return nil
}

func (a *App) LoopbackUp(c *cli.Context) error {
	err := netif.NewProvisioner(a.config).SetupLoopback(appContext())
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	return nil
}

func (a *App) registeredProvisioner(c *cli.Context) (netif.Provisioner, error) {
	specs := c.StringSlice("netif")
	if len(specs) == 0 {
		return nil, errors.New("at least one --netif spec is required")
	}

	p := netif.NewProvisioner(a.config)
	for _, spec := range specs {
		action, err := params.ParseNetifSpec(spec)
		if err != nil {
			return nil, err
		}
		p.Register(action)
	}
	return p, nil
}

// ensureForeignNamespace refuses to move interfaces into the very
// namespace they already live in, which would silently do nothing
// useful and rename interfaces in place.
func ensureForeignNamespace(pid int) error {
	self, err := netns.Get()
	if err != nil {
		return errors.Wrap(err, "fail to get current network namespace")
	}
	defer self.Close()

	target, err := netns.GetFromPid(pid)
	if err != nil {
		return errors.Wrapf(err, "fail to get network namespace of pid %d", pid)
	}
	defer target.Close()

	if self.Equal(target) {
		return fmt.Errorf("pid %d shares the caller's network namespace", pid)
	}
	return nil
}
