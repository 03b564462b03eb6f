package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Faultbox/smolview/internal/scene"
	"github.com/Faultbox/smolview/pkg/elements"
	"github.com/Faultbox/smolview/pkg/molecule"
)

func newElementsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "elements [symbol...]",
		Short: "List the built-in element table",
		Long: `Prints the element colours and radii used when an input has no element
map of its own (XYZ and CML). Symbols are case-insensitive.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var list []molecule.Element
			if len(args) == 0 {
				all, err := elements.All()
				if err != nil {
					return err
				}
				list = all
			}
			for _, s := range args {
				e, ok := elements.Lookup(s)
				if !ok {
					return fmt.Errorf("%w: %q", molecule.ErrUnknownElement, s)
				}
				list = append(list, e)
			}
			return printElements(cmd.OutOrStdout(), list)
		},
	}
}

func printElements(out io.Writer, list []molecule.Element) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Z\tSYMBOL\tNAME\tCOLOR\tRADIUS (pm)\tTEXTURE")
	for _, e := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%g\t%s\n", e.Number, e.Sym, e.Name, e.Color.Hex(), e.RadiusAtomicPM, scene.TextureName(e.Sym))
	}
	return w.Flush()
}
