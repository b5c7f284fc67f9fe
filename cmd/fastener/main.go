// Command fastener analyses threaded fastener joints from the command line.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"Fastener/internal/calc/joint"
	"Fastener/internal/config"
)

const (
	Version = "0.3.0"
	appName = "fastener"
)

// exitError carries a process exit status without an error message.
type exitError int

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

func main() {
	if err := rootCmd().Execute(); err != nil {
		var code exitError
		if errors.As(err, &code) {
			os.Exit(int(code))
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type globals struct {
	configPath string
	logLevel   string
}

func rootCmd() *cobra.Command {
	g := &globals{}
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Threaded fastener joint margin-of-safety analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		analyzeCmd(g),
		batchCmd(g),
		materialsCmd(g),
		threadsCmd(),
		tokenCmd(g),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}

type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	analyzer *joint.Analyzer
}

func (g *globals) load() (*app, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	level := cfg.Log.Level
	if g.logLevel != "" {
		level = g.logLevel
	}
	logger, err := config.NewLogger(level)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	tbl, reg, err := joint.Tables(cfg.Analysis.MaterialsFile, cfg.Analysis.StandardFiles)
	if err != nil {
		return nil, err
	}
	a := joint.NewAnalyzer(tbl, reg, joint.WithLogger(logger), joint.WithDefaultStandard(cfg.Analysis.Standard))
	return &app{cfg: cfg, logger: logger, analyzer: a}, nil
}
