// Package netnsbuilder spawns a child process inside a fresh network
// namespace so interfaces can be provisioned into it. The child is the
// current binary re-executed under a registered name; it brings its
// loopback up and holds the namespace open until told to exit.
package netnsbuilder

import (
	"context"
	"os"
	"os/exec"

	"github.com/Scalingo/go-utils/logger"
	"github.com/docker/docker/pkg/reexec"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/nsif/nsif/config"
)

// Manager runs a provisioning callback against a process living in a
// network namespace of its own.
type Manager interface {
	Run(ctx context.Context, provision func(ctx context.Context, pid int) error) error
}

type manager struct {
	Config *config.Config
}

func NewManager(c *config.Config) Manager {
	return &manager{Config: c}
}

// Run re-execs the current binary with CLONE_NEWNET, calls provision
// with the child's pid while the child keeps the namespace alive, then
// releases the child by closing its stdin.
func (m *manager) Run(ctx context.Context, provision func(ctx context.Context, pid int) error) error {
	log := logger.Get(ctx)

	cmd := &exec.Cmd{
		Path:        reexec.Self(),
		Args:        []string{sandboxCommand},
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		SysProcAttr: &unix.SysProcAttr{Cloneflags: unix.CLONE_NEWNET},
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return errors.Wrap(err, "fail to pipe sandbox stdin")
	}

	err = cmd.Start()
	if err != nil {
		return errors.Wrap(err, "sandbox reexec command failed to start")
	}
	log.WithField("pid", cmd.Process.Pid).Info("network namespace sandbox created")

	provisionErr := provision(ctx, cmd.Process.Pid)

	stdin.Close()
	err = cmd.Wait()

	if provisionErr != nil {
		return provisionErr
	}
	if err != nil {
		return errors.Wrap(err, "sandbox process failed")
	}
	return nil
}
