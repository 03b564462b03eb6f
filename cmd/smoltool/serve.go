package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/smolview/internal/engine/lighting"
	"github.com/Faultbox/smolview/internal/logger"
	"github.com/Faultbox/smolview/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr  string
		watch time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve <file|url>",
		Short: "Serve the structure to a browser",
		Long: `Starts an HTTP server with a canvas viewer at /, the scene as JSON at
/scene.json and a websocket at /ws that pushes the scene to the page.
With --watch a local input is reloaded when it changes and the new scene
is pushed to every open page.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pc, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Web.Addr
			}

			srv := web.New(addr)
			srv.SetRig(lighting.FromConfig(a.cfg.Render.Light))
			srv.SetScene(pc.Scene)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			if watch > 0 && pc.Source.Path != "" {
				go a.watch(ctx, srv, args[0], pc.Source.Path, watch)
			}
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().DurationVar(&watch, "watch", 0, "Poll interval for reloading a changed input file")
	return cmd
}

// watch reloads path whenever its modification time changes.
func (a *app) watch(ctx context.Context, srv *web.Server, arg, path string, every time.Duration) {
	var last time.Time
	if info, err := os.Stat(path); err == nil {
		last = info.ModTime()
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		info, err := os.Stat(path)
		if err != nil || !info.ModTime().After(last) {
			continue
		}
		last = info.ModTime()

		pc, err := a.load(ctx, arg)
		if err != nil {
			logger.Warn("reload failed", zap.String("path", path), zap.Error(err))
			continue
		}
		srv.SetScene(pc.Scene)
		logger.Info("reloaded", zap.String("path", path), zap.Int("clients", srv.Clients()))
	}
}
