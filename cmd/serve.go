package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/iburimskiy/backdrop/internal/gallery"
	"github.com/iburimskiy/backdrop/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the media gallery API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			lib, err := a.library()
			if err != nil {
				return err
			}
			if a.cfg.Logger.Level != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}
			return server.New(a.cfg.Server, lib, a.log).Run(ctx)
		},
	}
	cmd.Flags().String("addr", "", "listen address (defaults to server.addr)")
	cmd.Flags().String("media-dir", "", "directory served under /media")
	_ = a.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = a.v.BindPFlag("server.media_dir", cmd.Flags().Lookup("media-dir"))
	return cmd
}

func (a *app) library() (*gallery.Library, error) {
	if a.cfg.Server.Manifest != "" {
		return gallery.Load(a.cfg.Server.Manifest)
	}
	return gallery.Default()
}
