package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newConfigCmd(opts *options) *cobra.Command {
	var format, write string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after the config file and HLBRIDGE_* overrides
have been applied. With --write the result is saved to a file instead,
as YAML for .yaml/.yml paths and JSON otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if write != "" {
				if err := opts.cfg.Save(write); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.GreenString("wrote"), write)
				return nil
			}

			var data []byte
			var err error
			switch format {
			case "yaml":
				data, err = opts.cfg.YAML()
			case "json":
				data, err = json.MarshalIndent(opts.cfg, "", "  ")
				data = append(data, '\n')
			default:
				return fmt.Errorf("unknown format %q (want yaml or json)", format)
			}
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml or json")
	cmd.Flags().StringVarP(&write, "write", "w", "", "save the configuration to this file")
	return cmd
}

// newBenchCmd times repeated highlight_to_html calls on one input.
func newBenchCmd(opts *options) *cobra.Command {
	var syntax, theme string
	var iterations int
	var noCache bool

	cmd := &cobra.Command{
		Use:   "bench [file]",
		Short: "Time repeated renders of a file (or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if iterations <= 0 {
				return fmt.Errorf("--iterations must be positive, got %d", iterations)
			}

			var src []byte
			var err error
			if len(args) == 1 {
				src, err = os.ReadFile(args[0])
			} else {
				src, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}

			ropts := opts.cfg.RenderOptions()
			if noCache {
				ropts.MaxEntries = 0
			}

			start := time.Now()
			s := openSession(ropts, opts.newlines)
			defer s.close()
			load := time.Since(start)

			var size int
			start = time.Now()
			for i := 0; i < iterations; i++ {
				html, err := s.highlight(string(src), syntax, theme)
				if err != nil {
					return fmt.Errorf("render %s with %s: %w", syntax, theme, err)
				}
				size = len(html)
			}
			total := time.Since(start)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "catalog load: %s\n", load)
			fmt.Fprintf(w, "renders:      %d (%d bytes in, %d bytes out, cache %s)\n",
				iterations, len(src), size, cacheState(ropts.MaxEntries))
			fmt.Fprintf(w, "total:        %s\n", total)
			fmt.Fprintf(w, "average:      %s\n", color.CyanString("%s", total/time.Duration(iterations)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&syntax, "syntax", "s", "plaintext", "syntax name")
	cmd.Flags().StringVarP(&theme, "theme", "t", "monokai", "theme name")
	cmd.Flags().IntVarP(&iterations, "iterations", "n", 100, "number of renders")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")
	return cmd
}

func cacheState(maxEntries int) string {
	if maxEntries == 0 {
		return "off"
	}
	return fmt.Sprintf("%d entries", maxEntries)
}
