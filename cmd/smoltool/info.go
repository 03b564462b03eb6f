package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Faultbox/smolview/internal/pipeline"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file|url>",
		Short: "Show a summary of a structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pc, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printInfo(cmd.OutOrStdout(), pc)
		},
	}
}

func printInfo(out io.Writer, pc *pipeline.Context) error {
	m := pc.Molecule
	basis := m.BasisOrIdentity()

	fmt.Fprintf(out, "Source:      %s (%s)\n", pc.Source.Name(), pc.Kind)
	fmt.Fprintf(out, "Description: %s\n", m.Description)
	fmt.Fprintf(out, "Formula:     %s\n", m.Formula())
	fmt.Fprintf(out, "Atoms:       %d\n", len(m.Atoms))
	fmt.Fprintf(out, "Bonds:       %d\n", len(m.Bonds))
	fmt.Fprintf(out, "Coords:      %s\n", m.CoordType)
	fmt.Fprintf(out, "Pos scale:   %g\n", m.PosScale)
	fmt.Fprintf(out, "Basis:       %v\n", *basis)
	fmt.Fprintf(out, "Volume:      %.4f\n", basis.Volume(m.PosScale))
	fmt.Fprintf(out, "Cart range:  %v .. %v\n", pc.Transform.Min, pc.Transform.Max)

	counts := make(map[string]int)
	for _, at := range m.Atoms {
		counts[at.Sym]++
	}
	syms := make([]string, 0, len(counts))
	for s := range counts {
		syms = append(syms, s)
	}
	sort.Strings(syms)

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ELEMENT\tCOUNT\tCOLOR\tRADIUS (pm)")
	for _, s := range syms {
		e, err := m.Element(s)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%g\n", s, counts[s], e.Color.Hex(), e.RadiusAtomicPM)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	for _, t := range pc.Timings {
		fmt.Fprintf(out, "%-10s %v\n", t.Stage, t.Took)
	}
	fmt.Fprintf(out, "%-10s %v\n", "total", pc.Total())
	return nil
}
