package main

import (
	"context"
	"os"

	"github.com/Scalingo/go-utils/logger"
	"github.com/docker/docker/pkg/reexec"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/nsif/nsif/config"
)

type App struct {
	config *config.Config
	cli    *cli.App
}

func main() {
	// The sandbox child re-enters here under its registered name.
	if reexec.Init() {
		return
	}

	log := logger.Default()

	c, err := config.Build()
	if err != nil {
		log.WithError(err).Error("fail to build configuration")
		os.Exit(1)
	}

	app := &App{
		config: c,
		cli:    cli.NewApp(),
	}
	app.cli.Name = "nsif"
	app.cli.Usage = "provision network interfaces into a process's network namespace"
	app.cli.Version = c.Version
	app.cli.Flags = []cli.Flag{
		cli.StringFlag{Name: "log-level", Value: "info", Usage: "logrus level", EnvVar: "NSIF_LOG_LEVEL"},
	}
	app.cli.Before = func(ctx *cli.Context) error {
		level, err := logrus.ParseLevel(ctx.GlobalString("log-level"))
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		log.(*logrus.Logger).SetLevel(level)
		return nil
	}
	app.cli.Commands = cli.Commands{
		{
			Name:   "provision",
			Usage:  "register netif specs and move them into the namespace of a running process",
			Action: app.Provision,
			Flags: []cli.Flag{
				cli.IntFlag{Name: "pid,p", Usage: "target process"},
				cli.StringSliceFlag{Name: "netif,n", Usage: "interface spec: IFACE,NAME | macvlan,MASTER,NAME | veth,OUT,IN"},
			},
		}, {
			Name:   "sandbox",
			Usage:  "create a throwaway network namespace and provision interfaces into it",
			Action: app.Sandbox,
			Flags: []cli.Flag{
				cli.StringSliceFlag{Name: "netif,n", Usage: "interface spec: IFACE,NAME | macvlan,MASTER,NAME | veth,OUT,IN"},
			},
		}, {
			Name:   "lo-up",
			Usage:  "bring the loopback interface of the current namespace up",
			Action: app.LoopbackUp,
		}, {
			Name:   "version",
			Action: app.Version,
		},
	}

	err = app.cli.Run(os.Args)
	if err != nil {
		log.WithError(err).Error("fail to run command")
		os.Exit(1)
	}
}

func appContext() context.Context {
	return logger.ToCtx(context.Background(), logger.Default())
}
