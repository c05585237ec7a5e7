package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// sectionLabel turns a section id into its menu label.
func sectionLabel(section string) string {
	return titleCaser.String(section)
}

// NewSectionsCommand creates the sections command.
func NewSectionsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sections",
		Short: "List the configured site sections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			writeSections(cmd.OutOrStdout(), cfg.Site.Sections, cfg.Site.DefaultSection)
			return nil
		},
	}
}

// writeSections prints one line per section, marking current with "*".
func writeSections(w io.Writer, sections []string, current string) {
	for _, s := range sections {
		marker := " "
		if s == current {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %-12s %s\n", marker, s, sectionLabel(s))
	}
}
