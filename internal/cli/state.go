package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dshills/portfolio/internal/app"
	"github.com/dshills/portfolio/internal/state"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NewStateCommand creates the state command.
func NewStateCommand(opts *RootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "state [path]",
		Short: "Print the initial state tree or one path of it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "yaml" && format != "json" {
				return fmt.Errorf("invalid format %q: must be yaml or json", format)
			}

			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), cfg)
			if err != nil {
				return err
			}

			a, err := app.New(cfg, app.Deps{Logger: logger})
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := a.Start(ctx); err != nil {
				return err
			}
			defer a.Shutdown(context.Background())

			var value any = a.Store().Snapshot()
			if len(args) == 1 {
				v, ok := a.Store().Get(state.Path(args[0]))
				if !ok {
					return fmt.Errorf("no value at %q", args[0])
				}
				value = v
			}
			return render(cmd.OutOrStdout(), format, value)
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "output format (yaml|json)")
	return cmd
}

// render writes value as indented YAML or JSON.
func render(w io.Writer, format string, value any) error {
	switch format {
	case "json":
		out, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", out)
		return err
	default:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	}
}
