package main

import (
	"fmt"
	"io"
	"os"

	"github.com/danmuck/bitsctl/internal/config"
	"github.com/danmuck/bitsctl/internal/logging"
	"github.com/danmuck/bitsctl/internal/observability"
	"github.com/danmuck/bitsctl/internal/protocol/packet"
	"github.com/danmuck/bitsctl/internal/transmission"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type options struct {
	configPath  string
	input       string
	logLevel    string
	metricsFile string
	maxBits     int
	maxDepth    int

	cfg config.RunConfig
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "bitsctl",
		Short:         "Decode and evaluate nested bit-packet transmissions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to a TOML config file")
	flags.StringVarP(&opts.input, "input", "i", "", "file whose first line is the transmission")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error, off)")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write decode metrics in Prometheus text format to this file")
	flags.IntVar(&opts.maxBits, "max-bits", 0, "reject transmissions longer than this many bits (0 = unlimited)")
	flags.IntVar(&opts.maxDepth, "max-depth", 0, "reject packets nested deeper than this (0 = unlimited)")

	root.AddCommand(
		newRunCmd(opts),
		newTreeCmd(opts),
		newEncodeCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

func (o *options) resolve(cmd *cobra.Command) error {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Input = o.input
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = o.metricsFile
	}
	if flags.Changed("max-bits") {
		cfg.Limits.MaxBits = o.maxBits
	}
	if flags.Changed("max-depth") {
		cfg.Limits.MaxDepth = o.maxDepth
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	if cfg.LogLevel != "" {
		logging.SetLevel(cfg.LogLevel)
	}

	o.cfg = cfg
	return nil
}

// withMetrics runs fn and then writes the metrics file, if one is
// configured, whether or not fn failed.
func (o *options) withMetrics(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if o.cfg.MetricsFile == "" {
			return err
		}
		if werr := observability.WriteMetricsFile(o.cfg.MetricsFile); werr != nil {
			if err != nil {
				log.Error().Err(werr).Msg("metrics not written")
				return err
			}
			return werr
		}
		log.Debug().Str("path", o.cfg.MetricsFile).Msg("wrote metrics")
		return err
	}
}

// load decodes the transmission from the positional argument, the
// configured input file, or stdin, in that order.
func (o *options) load(cmd *cobra.Command, args []string) (*transmission.Transmission, error) {
	var line string
	switch {
	case len(args) == 1:
		line = args[0]
	case o.cfg.Input != "":
		f, err := os.Open(o.cfg.Input)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		if line, err = transmission.ReadFirstLine(f); err != nil {
			return nil, err
		}
		log.Debug().Str("path", o.cfg.Input).Msg("loaded transmission")
	default:
		var err error
		if line, err = transmission.ReadFirstLine(cmd.InOrStdin()); err != nil {
			return nil, err
		}
	}
	return transmission.Parse(line, o.cfg.Limits)
}

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run [hex]",
		Short: "Print the version sum and the value of a transmission",
		Args:  cobra.MaximumNArgs(1),
		RunE: opts.withMetrics(func(cmd *cobra.Command, args []string) error {
			tx, err := opts.load(cmd, args)
			if err != nil {
				return err
			}
			value, err := tx.Value()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "version sum: %d\n", tx.VersionSum())
			fmt.Fprintf(out, "value: %d\n", value)
			return nil
		}),
	}
}

func newTreeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tree [hex]",
		Short: "Print the decoded packet tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: opts.withMetrics(func(cmd *cobra.Command, args []string) error {
			tx, err := opts.load(cmd, args)
			if err != nil {
				return err
			}
			return packet.Dump(cmd.OutOrStdout(), tx.Root())
		}),
	}
}

func newEncodeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "encode [hex]",
		Short: "Decode then re-encode a transmission without trailing padding",
		Args:  cobra.MaximumNArgs(1),
		RunE: opts.withMetrics(func(cmd *cobra.Command, args []string) error {
			tx, err := opts.load(cmd, args)
			if err != nil {
				return err
			}
			hex, err := tx.Canonical()
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), hex+"\n")
			return err
		}),
	}
}

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write or check bitsctl config files",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Write a config file holding the resolved settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteTemplate(args[0], opts.cfg, force); err != nil {
				return err
			}
			log.Info().Str("path", args[0]).Msg("wrote config template")
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	validateCmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Check that a config file loads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Load(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}
