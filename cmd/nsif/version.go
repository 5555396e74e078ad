package main

import (
	"fmt"

	"github.com/urfave/cli"
)

func (a *App) Version(c *cli.Context) error {
	fmt.Printf("nsif version: %v\n", a.config.Version)
	return nil
}
