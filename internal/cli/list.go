package cli

import (
	"fmt"
	"runtime"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/datagen/internal/core"
	"github.com/spf13/cobra"
)

// Build metadata, set with -ldflags "-X github.com/JonMunkholm/datagen/internal/cli.Version=...".
var (
	Version = "dev"
	Commit  = ""
)

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List built-in categories and their fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tLABEL\tFIELDS")
			for _, c := range core.Categories() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Key, c.Label, strings.Join(c.Fields, ", "))
			}
			return tw.Flush()
		},
	}
}

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List output formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tLABEL\tEXTENSION\tCONTENT TYPE")
			for _, f := range core.Formats() {
				fmt.Fprintf(tw, "%s\t%s\t.%s\t%s\n", f.Key, f.Label, f.Extension, f.ContentType)
			}
			return tw.Flush()
		},
	}
}

func newVersionCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !asJSON {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "datagen %s\n", versionSummary())
				return err
			}
			return encodeJSON(cmd.OutOrStdout(), map[string]string{
				"version": Version,
				"commit":  Commit,
				"go":      runtime.Version(),
				"go_os":   runtime.GOOS,
				"go_arch": runtime.GOARCH,
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print detailed JSON version info")
	return cmd
}

func versionSummary() string {
	v := Version
	if v == "" {
		v = "dev"
	}
	if Commit != "" {
		v += " (" + Commit + ")"
	}
	return v
}
