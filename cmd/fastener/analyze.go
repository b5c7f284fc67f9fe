package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"Fastener/internal/calc/batch"
	"Fastener/internal/calc/importer"
	"Fastener/internal/calc/joint"
	"Fastener/internal/calc/report"
	repo "Fastener/internal/repo"
)

type outputFlags struct {
	format string
	xlsx   string
	pdf    string
	store  bool
	strict bool
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "format", "f", "text", "Output format (text, json, yaml)")
	cmd.Flags().StringVar(&o.xlsx, "xlsx", "", "Also write results to this xlsx file")
	cmd.Flags().StringVar(&o.pdf, "pdf", "", "Also write a PDF report to this file")
	cmd.Flags().BoolVar(&o.store, "store", false, "Save results to the configured database")
	cmd.Flags().BoolVar(&o.strict, "strict", false, "Exit with status 2 when any joint fails or is rejected")
}

func analyzeCmd(g *globals) *cobra.Command {
	var out outputFlags
	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Analyse one joint described in a JSON or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.load()
			if err != nil {
				return err
			}
			var req joint.Request
			if err := decodeFile(args[0], &req); err != nil {
				return err
			}
			res, err := a.analyzer.Analyze(req)
			if err != nil {
				return err
			}
			items := []batch.Item{{JointID: res.JointID, Result: &res}}
			return a.emit(cmd.Context(), cmd.OutOrStdout(), out, []joint.Request{req}, batch.Result{
				Items:   items,
				Summary: batch.Summary{Total: 1, Passed: boolInt(res.Pass), Failed: boolInt(!res.Pass)},
			})
		},
	}
	out.register(cmd)
	return cmd
}

func batchCmd(g *globals) *cobra.Command {
	var (
		out     outputFlags
		workers int
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Analyse many joints from a JSON, YAML or xlsx file",
		Long: `Analyse many joints concurrently. JSON and YAML files hold either a list
of joints or an object with an "items" list. xlsx files use the joints
sheet layout of the import endpoint.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.load()
			if err != nil {
				return err
			}
			reqs, err := a.readBatch(args[0])
			if err != nil {
				return err
			}
			if workers == 0 {
				workers = a.cfg.Analysis.Workers
			}
			if timeout == 0 {
				timeout = a.cfg.Analysis.BatchTimeout
			}
			res, err := batch.Analyze(cmd.Context(), a.analyzer, reqs, batch.Options{
				Workers: workers,
				Timeout: timeout,
				Logger:  a.logger,
			})
			if err != nil {
				return err
			}
			return a.emit(cmd.Context(), cmd.OutOrStdout(), out, reqs, res)
		},
	}
	out.register(cmd)
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent analyses (default from config, then GOMAXPROCS)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Batch timeout (default from config)")
	return cmd
}

func (a *app) readBatch(path string) ([]joint.Request, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		sheet, err := importer.Read(f)
		if err != nil {
			return nil, err
		}
		for _, e := range sheet.Errors {
			a.logger.Warn("row skipped", "row", e.Row, "error", e.Message)
		}
		return sheet.Requests, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var list []joint.Request
	if err := decode(path, data, &list); err == nil {
		return list, nil
	}
	var in batch.Input
	if err := decode(path, data, &in); err != nil {
		return nil, err
	}
	return in.Items, nil
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return decode(path, data, v)
}

func decode(path string, data []byte, v any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return nil
}

func (a *app) emit(ctx context.Context, w io.Writer, out outputFlags, reqs []joint.Request, res batch.Result) error {
	if out.store {
		if err := a.store(ctx, reqs, res); err != nil {
			return err
		}
	}
	if out.xlsx != "" {
		if err := writeFile(out.xlsx, func(w io.Writer) error { return importer.Write(w, res.Items) }); err != nil {
			return err
		}
	}
	if out.pdf != "" {
		if err := writeFile(out.pdf, func(w io.Writer) error { return report.Render(w, report.Meta{}, res.Results()) }); err != nil {
			return err
		}
	}

	switch out.format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	case "yaml":
		// through JSON so the keys match the API field names
		b, err := json.Marshal(res)
		if err != nil {
			return err
		}
		var doc any
		if err := json.Unmarshal(b, &doc); err != nil {
			return err
		}
		if err := yaml.NewEncoder(w).Encode(doc); err != nil {
			return err
		}
	case "text":
		if err := writeText(w, res); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q", out.format)
	}

	if out.strict && (res.Summary.Failed > 0 || res.Summary.Rejected > 0) {
		return exitError(2)
	}
	return nil
}

func (a *app) store(ctx context.Context, reqs []joint.Request, res batch.Result) error {
	if a.cfg.Database.Driver == "" {
		return fmt.Errorf("--store needs database.driver and database.dsn in the config")
	}
	s, err := repo.Open(ctx, a.cfg.Database.Driver, a.cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer s.Close()
	for i, it := range res.Items {
		if it.Result == nil {
			continue
		}
		id, err := s.Save(ctx, reqs[i], *it.Result)
		if err != nil {
			return err
		}
		a.logger.Info("stored analysis", "joint_id", it.JointID, "id", id)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeText(w io.Writer, res batch.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, it := range res.Items {
		if it.Error != nil {
			fmt.Fprintf(tw, "%s\tREJECTED\t%s: %s\n", it.JointID, it.Error.Code, it.Error.Message)
			continue
		}
		r := it.Result
		verdict := "PASS"
		if !r.Pass {
			verdict = "FAIL"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\tgoverning %s\n", r.JointID, verdict, r.Thread, r.Standard, mos(r.GoverningMargin))
		for _, m := range r.Results {
			part := ""
			if m.Part > 0 {
				part = fmt.Sprintf("part %d", m.Part)
			}
			fmt.Fprintf(tw, "\t%s\t%s\t%.0f N\t%.0f N\t%s\t%s\n", m.Mode, part, m.Capability, m.Requirement, mos(m.Margin), m.Status)
		}
	}
	s := res.Summary
	fmt.Fprintf(tw, "\n%d joints: %d pass, %d fail, %d rejected\n", s.Total, s.Passed, s.Failed, s.Rejected)
	return tw.Flush()
}

func mos(m *float64) string {
	if m == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.3f", *m)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
