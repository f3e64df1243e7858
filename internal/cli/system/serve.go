package system

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/cadence/internal/api"
	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/constants"
)

type ServeCmd struct {
	Addr string `help:"Address to listen on." default:"${listen_addr}"`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	if !ctx.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	ctx.PerformAutomaticBackup()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := c.Addr
	if addr == "" {
		addr = constants.DefaultListenAddr
	}
	fmt.Printf("Serving %s API on http://%s (owner header: %s)\n", constants.AppName, addr, constants.OwnerHeader)
	return api.NewServer(ctx.Tracker).Serve(sigCtx, addr)
}
