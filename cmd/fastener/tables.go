package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	auth "Fastener/internal/auth"
	"Fastener/internal/calc/thread"
)

func materialsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "materials",
		Short: "List the material property table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.load()
			if err != nil {
				return err
			}
			tbl := a.analyzer.Materials()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "table %s\n", tbl.Version())
			fmt.Fprintln(tw, "ID\tFty MPa\tFtu MPa\tFsu MPa\tFbru MPa\tE MPa\tCTE 1/°C\tSpecification")
			for _, m := range tbl.All() {
				fmt.Fprintf(tw, "%s\t%.0f\t%.0f\t%.0f\t%.0f\t%.0f\t%.2e\t%s\n",
					m.ID, m.FtyMPa, m.FtuMPa, m.FsuMPa, m.FbruMPa, m.ModulusMPa, m.CTEPerC, m.Specification)
			}
			return tw.Flush()
		},
	}
}

func threadsCmd() *cobra.Command {
	var series string
	cmd := &cobra.Command{
		Use:   "threads",
		Short: "List tabulated thread sizes with their stress areas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := thread.ParseSeries(series)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "Size\tGroup\tDesignation\tAt mm²\tminor area mm²")
			for _, size := range thread.Sizes(s) {
				d, err := size.Designation(s)
				if err != nil {
					return err
				}
				geo, err := thread.Compute(d, d.DiameterMM)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.3f\t%.3f\n", size.Label, size.Group, d, geo.TensileStressArea, geo.MinorArea)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&series, "series", "s", "UN", "Thread series (UN, UNR, UNJ, M, MJ)")
	return cmd
}

func tokenCmd(g *globals) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token signed with the configured TOKEN_KEY",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.load()
			if err != nil {
				return err
			}
			tok, err := auth.IssueToken([]byte(a.cfg.Auth.TokenKey), subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Token subject (client name)")
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "Token lifetime")
	return cmd
}
