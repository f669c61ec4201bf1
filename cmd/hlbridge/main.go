package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codefionn/hlbridge/internal/bridge"
	"github.com/codefionn/hlbridge/internal/config"
	"github.com/codefionn/hlbridge/internal/logger"
	"github.com/codefionn/hlbridge/internal/pprof"
)

type options struct {
	configFile string
	logLevel   string
	newlines   bool
	noColor    bool
	profiles   pprof.Config

	cfg      *config.Config
	profiler *pprof.Profiler
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "hlbridge",
		Short: "Inspect and exercise the hlbridge highlighting library",
		Long: `hlbridge drives the same operations the shared library exports, through
caller-owned buffers and the last error channel, so catalogs, lookups and
rendering can be checked without writing a foreign caller.

Configuration is read from --config, $HLBRIDGE_CONFIG or the user config
directory, and every key can be overridden with HLBRIDGE_* variables.`,
		Version:       bridge.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.finish()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "",
		"config file (default: $HLBRIDGE_CONFIG or ~/.config/hlbridge/config.json)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "",
		"log to stderr at this level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&opts.newlines, "newlines", false,
		"load the syntax catalog for the newline variant")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false,
		"disable colored output")
	rootCmd.PersistentFlags().StringVar(&opts.profiles.CPUProfile, "cpuprofile", "",
		"write a CPU profile to this file")
	rootCmd.PersistentFlags().StringVar(&opts.profiles.HeapProfile, "memprofile", "",
		"write a heap profile to this file")
	rootCmd.PersistentFlags().StringVar(&opts.profiles.MutexProfile, "mutexprofile", "",
		"write a mutex contention profile to this file")

	rootCmd.AddCommand(
		newSyntaxesCmd(opts),
		newThemesCmd(opts),
		newFindCmd(opts),
		newRenderCmd(opts),
		newErrorsCmd(opts),
		newVersionCmd(opts),
		newConfigCmd(opts),
		newBenchCmd(opts),
	)
	return rootCmd
}

func (o *options) init() error {
	if o.noColor {
		color.NoColor = true
	}

	path := o.configFile
	if path == "" {
		path = config.GetConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
		if cfg.LogPath == "" {
			cfg.LogPath = logger.StderrPath
		}
	}
	if err := cfg.InitLogger(); err != nil {
		return err
	}
	o.cfg = cfg

	if o.profiles.Enabled() {
		o.profiler = pprof.New(o.profiles)
		if err := o.profiler.Start(); err != nil {
			return err
		}
	}
	return nil
}

func (o *options) finish() error {
	var err error
	if o.profiler != nil {
		err = o.profiler.Stop()
	}
	if cerr := logger.Global().Close(); err == nil {
		err = cerr
	}
	return err
}

func (o *options) session() *session {
	return openSession(o.cfg.RenderOptions(), o.newlines)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
