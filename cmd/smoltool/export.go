package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/smolview/internal/export"
	"github.com/Faultbox/smolview/internal/logger"
)

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file|url> <output.glb>",
		Short: "Write the scene as binary glTF",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pc, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			opts := export.DefaultOptions()
			opts.Segments = a.cfg.Render.SphereSegments
			if err := export.Write(pc.Scene, args[1], opts); err != nil {
				return err
			}
			logger.Info("exported", zap.String("output", args[1]), zap.Any("counts", pc.Scene.Counts()))
			return nil
		},
	}
}
