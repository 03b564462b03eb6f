package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/smolview/internal/logger"
	"github.com/Faultbox/smolview/internal/pipeline"
	"github.com/Faultbox/smolview/pkg/bonding"
	"github.com/Faultbox/smolview/pkg/formats"
	"github.com/Faultbox/smolview/pkg/molecule"
)

func newConvertCmd(a *app) *cobra.Command {
	var (
		posScale float64
		distance string
		keep     bool
		to       string
	)

	cmd := &cobra.Command{
		Use:   "convert <input> [output]",
		Short: "Convert a structure to smol JSON or XYZ",
		Long: `Reads an XYZ, CML or smol file and writes smol JSON (or XYZ with
--to xyz) to the output path, or to stdout when it is omitted or "-".

For smol output coordinates are stored as cartesian in an identity cell
scaled by --pos-scale. Atoms on a cell face get an image on the opposite
face and bonds are inferred as the spanning forest of shortest distances,
unless --keep-bonds is given and the input has bonds of its own.

XYZ output keeps the input coordinates and drops bonds and the cell.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if to != "smol" && to != "xyz" {
				return fmt.Errorf("unknown output format %q (want smol or xyz)", to)
			}
			mode, err := bonding.ParseDistanceMode(distance)
			if err != nil {
				return err
			}
			if posScale <= 0 {
				return fmt.Errorf("pos-scale %g must be positive", posScale)
			}

			res, err := a.read(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			m, err := formats.Parse(res.Kind, res.Data)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if to == "xyz" {
				buf.Write(formats.FormatXYZ(m))
			} else {
				if err := convert(m, posScale, mode, keep); err != nil {
					return err
				}
				if err := formats.WriteSmol(&buf, m); err != nil {
					return err
				}
				// The viewer applies the direct range check to cartesian
				// coordinates too.
				if _, err := pipeline.FromMolecule(m, pipeline.OptionsFromConfig(a.cfg)); err != nil {
					logger.Warn("converted structure will not display", zap.Error(err))
				}
			}
			if len(args) < 2 || args[1] == "-" {
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(args[1], buf.Bytes(), 0o644); err != nil {
				return err
			}
			logger.Info("converted",
				zap.String("input", args[0]),
				zap.String("output", args[1]),
				zap.Int("atoms", len(m.Atoms)),
				zap.Int("bonds", len(m.Bonds)),
			)
			return nil
		},
	}

	f := cmd.Flags()
	f.Float64Var(&posScale, "pos-scale", 1, "Scale applied to the coordinates")
	f.StringVar(&distance, "distance", string(bonding.Center), "Bond distance measure (center or shell)")
	f.BoolVar(&keep, "keep-bonds", false, "Keep bonds present in the input instead of inferring them")
	f.StringVar(&to, "to", "smol", "Output format (smol or xyz)")
	return cmd
}

// convert rewrites m in place into the layout smoltool writes.
func convert(m *molecule.Molecule, posScale float64, mode bonding.DistanceMode, keepBonds bool) error {
	m.CoordType = molecule.CoordCartesian
	m.Basis = molecule.IdentityBasis()
	m.PosScale = posScale

	if keepBonds && len(m.Bonds) > 0 {
		return molecule.Validate(m)
	}
	if err := bonding.Augment(m, mode); err != nil {
		return err
	}
	return molecule.Validate(m)
}
