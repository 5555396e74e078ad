package netnsbuilder

import (
	"context"
	"io"
	"io/ioutil"
	"os"

	"github.com/Scalingo/go-utils/logger"
	"github.com/docker/docker/pkg/reexec"
	"github.com/sirupsen/logrus"

	"github.com/nsif/nsif/config"
	"github.com/nsif/nsif/netif"
)

const sandboxCommand = "nsif-netns-sandbox"

func init() {
	reexec.Register(sandboxCommand, reexecSandbox)
}

// reexecSandbox is the child side: already inside the new namespace,
// it brings loopback up and blocks on stdin until the parent is done
// provisioning.
func reexecSandbox() {
	log := logger.Default()
	ctx := logger.ToCtx(context.Background(), log)

	c, err := config.Build()
	if err != nil {
		logrus.Fatal(err)
	}

	err = netif.NewProvisioner(c).SetupLoopback(ctx)
	if err != nil {
		logrus.Fatal(err)
	}

	io.Copy(ioutil.Discard, os.Stdin)
}
