package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Faultbox/smolview/internal/pipeline"
)

func newProjectCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "project <file|url>",
		Short: "Print cartesian and projected coordinates of every atom",
		Long: `Runs the coordinate transform and prints, per atom, the direct,
cartesian and projection-cube coordinates. With --json the full scene
(cell edges, bonds, spheres, arrows) is written instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pc, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(pc.Scene)
			}
			return printProjection(cmd.OutOrStdout(), pc)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Write the scene as JSON")
	return cmd
}

func printProjection(out io.Writer, pc *pipeline.Context) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "AIX\tSYM\tDIRECT\t\t\tCARTESIAN\t\t\tPROJECTED\t\t\t")
	for _, at := range pc.Molecule.Atoms {
		sym := at.Sym
		if at.IsReflection {
			sym += "*"
		}
		fmt.Fprintf(w, "%d\t%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t\n",
			at.Aix, sym,
			at.Direct[0], at.Direct[1], at.Direct[2],
			at.Cart.X, at.Cart.Y, at.Cart.Z,
			at.Proj.X, at.Proj.Y, at.Proj.Z,
		)
	}
	return w.Flush()
}
