package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codefionn/hlbridge/internal/consts"
	"github.com/codefionn/hlbridge/internal/diag"
)

func newSyntaxesCmd(opts *options) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "syntaxes",
		Short: "List syntax names in catalog order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := opts.session()
			defer s.close()

			names, err := s.syntaxes()
			if err != nil {
				return err
			}
			return printNames(cmd.OutOrStdout(), names, filter)
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "only show names containing this text (case-insensitive)")
	return cmd
}

func newThemesCmd(opts *options) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "themes",
		Short: "List theme names in sorted order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := opts.session()
			defer s.close()

			names, err := s.themes()
			if err != nil {
				return err
			}
			return printNames(cmd.OutOrStdout(), names, filter)
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "only show names containing this text (case-insensitive)")
	return cmd
}

func printNames(w io.Writer, names []string, filter string) error {
	filter = strings.ToLower(filter)
	for _, name := range names {
		if filter != "" && !strings.Contains(strings.ToLower(name), filter) {
			continue
		}
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}

func newFindCmd(opts *options) *cobra.Command {
	var ext, token string

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Resolve a file extension or fence token to a syntax name",
		Example: `  hlbridge find --ext rs
  hlbridge find --token golang`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (ext == "") == (token == "") {
				return errors.New("exactly one of --ext or --token is required")
			}

			s := opts.session()
			defer s.close()

			var name string
			var err error
			if ext != "" {
				name, err = s.byExtension(ext)
			} else {
				name, err = s.byToken(token)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), color.GreenString(name))
			return err
		},
	}
	cmd.Flags().StringVar(&ext, "ext", "", "file extension, e.g. rs or .py")
	cmd.Flags().StringVar(&token, "token", "", "markdown fence token, e.g. rust or golang")
	return cmd
}

func newRenderCmd(opts *options) *cobra.Command {
	var syntax, theme, out string

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a file (or stdin) to an HTML fragment",
		Long: `Render a file, or standard input when no file is given, to an HTML fragment
with inline styles. Without --syntax the syntax is picked from the file
extension and falls back to plaintext.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			s := opts.session()
			defer s.close()

			if syntax == "" {
				syntax = "plaintext"
				if len(args) == 1 {
					if ext := filepath.Ext(args[0]); ext != "" {
						if name, err := s.byExtension(ext); err == nil {
							syntax = name
						}
					}
				}
			}

			html, err := s.highlight(string(src), syntax, theme)
			if err != nil {
				return fmt.Errorf("render %s with %s: %w", syntax, theme, err)
			}

			if out == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), html)
				return err
			}
			if err := os.WriteFile(out, []byte(html), 0644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s (%s, %s)\n", color.GreenString("wrote"), out, syntax, theme)
			return nil
		},
	}
	cmd.Flags().StringVarP(&syntax, "syntax", "s", "", "syntax name as listed by 'hlbridge syntaxes'")
	cmd.Flags().StringVarP(&theme, "theme", "t", "monokai", "theme name as listed by 'hlbridge themes'")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the fragment to this file instead of stdout")
	return cmd
}

// newErrorsCmd walks through the last error protocol a foreign caller uses.
func newErrorsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "errors",
		Short: "Demonstrate the last error round trip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			s := opts.session()
			defer s.close()

			ext, err := cstring("zzz_no_such_ext")
			if err != nil {
				return err
			}
			buf := make([]byte, consts.BufferSize1KB)
			rc := s.b.FindSyntaxByExtension(cliThread, unsafe.Pointer(&buf[0]), int32(len(buf)), s.ss, ext)
			fmt.Fprintf(w, "find_syntax_by_extension(%q) = %s\n", "zzz_no_such_ext", color.RedString("%d (%s)", rc, diag.Code(rc)))

			n := s.b.LastErrorLength(cliThread)
			fmt.Fprintf(w, "last_error_length() = %d\n", n)

			got := s.b.LastErrorMessage(cliThread, unsafe.Pointer(&buf[0]), int32(len(buf)))
			if got < 0 {
				return fmt.Errorf("last_error_message failed with %d", got)
			}
			fmt.Fprintf(w, "last_error_message() = %d %q\n", got, string(buf[:got]))

			again := s.b.LastErrorMessage(cliThread, unsafe.Pointer(&buf[0]), int32(len(buf)))
			fmt.Fprintf(w, "last_error_message() = %d %s\n", again, color.GreenString("(drained)"))
			return nil
		},
	}
}

func newVersionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the library version reported by hlbridge_version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := opts.session()
			defer s.close()

			v, err := s.version()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), v)
			return err
		},
	}
}
