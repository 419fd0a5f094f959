package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/datagen/internal/core"
	"github.com/spf13/cobra"
)

// runFlags are shared by generate and schema.
type runFlags struct {
	count  int
	format string
	seed   uint64
	locale string
	output string
}

func (f *runFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.IntVarP(&f.count, "count", "n", 0, "Number of records (default from GENERATE_DEFAULT_COUNT)")
	fl.StringVarP(&f.format, "format", "f", "", "Output format: json, csv, xml or sql (default from GENERATE_DEFAULT_FORMAT)")
	fl.Uint64Var(&f.seed, "seed", 0, "Seed for reproducible output")
	fl.StringVar(&f.locale, "locale", "", "Locale hint (accepted, not yet used)")
	fl.StringVarP(&f.output, "output", "o", "", "Write output to a file instead of stdout")
}

// resolve fills defaults from configuration. An explicit --count 0 is kept
// so the service rejects it.
func (f *runFlags) resolve(cmd *cobra.Command, a *app) (count int, format string, seed *uint64) {
	count = f.count
	if !cmd.Flags().Changed("count") {
		count = a.cfg.Generate.DefaultCount
	}
	format = f.format
	if format == "" {
		format = a.cfg.Generate.DefaultFormat
	}
	if cmd.Flags().Changed("seed") {
		s := f.seed
		seed = &s
	}
	return count, format, seed
}

func newGenerateCmd(a *app) *cobra.Command {
	var (
		flags    runFlags
		category string
	)

	cmd := &cobra.Command{
		Use:         "generate",
		Short:       "Generate a dataset for a built-in category",
		Example:     "  datagen generate --category financial --count 100 --format csv -o accounts.csv",
		Annotations: serviceAnnotation,
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			count, format, seed := flags.resolve(cmd, a)
			result, err := a.service.Generate(cmd.Context(), core.Request{
				Category: category,
				Count:    count,
				Format:   format,
				Seed:     seed,
				Locale:   flags.locale,
			})
			if err != nil {
				return err
			}
			return emit(cmd, result, flags.output)
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "personal", "Category: personal, financial, business, geographic or internet")
	flags.register(cmd)
	return cmd
}

func newSchemaCmd(a *app) *cobra.Command {
	var (
		flags  runFlags
		file   string
		inline string
		syntax string
	)

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Generate a dataset from a custom field schema",
		Long: `Generate records from a schema mapping field names to specs.

Specs are "number|MIN,MAX", "TYPE|VALUE" for a literal value, or one of the
tags firstName, lastName, email, phone and date. Other tags produce "Unknown".`,
		Example: `  datagen schema --schema '{"age": "number|18,65", "name": "firstName"}' --count 5
  datagen schema --file people.yaml --format sql`,
		Annotations: serviceAnnotation,
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, detected, err := readSchema(cmd.InOrStdin(), file, inline)
			if err != nil {
				return err
			}
			if syntax == "" {
				syntax = detected
			}

			count, format, seed := flags.resolve(cmd, a)
			result, err := a.service.GenerateCustom(cmd.Context(), core.CustomRequest{
				Schema:       text,
				SchemaFormat: core.SchemaFormat(strings.ToLower(syntax)),
				Count:        count,
				Format:       format,
				Seed:         seed,
				Locale:       flags.locale,
			})
			if err != nil {
				return err
			}
			return emit(cmd, result, flags.output)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", `Schema file (JSON or YAML), "-" for stdin`)
	cmd.Flags().StringVar(&inline, "schema", "", "Inline schema text")
	cmd.Flags().StringVar(&syntax, "syntax", "", "Schema syntax: json or yaml (default from file extension)")
	cmd.MarkFlagsMutuallyExclusive("file", "schema")
	cmd.MarkFlagsOneRequired("file", "schema")
	flags.register(cmd)
	return cmd
}

// readSchema returns schema text and the syntax implied by the file name.
func readSchema(stdin io.Reader, file, inline string) (string, string, error) {
	if file == "" {
		return inline, string(core.SchemaJSON), nil
	}

	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return "", "", fmt.Errorf("read schema: %w", err)
	}

	syntax := core.SchemaJSON
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		syntax = core.SchemaYAML
	}
	return string(data), string(syntax), nil
}

// emit writes the dataset and a summary line on stderr.
func emit(cmd *cobra.Command, result *core.Result, output string) error {
	if err := writeOutput(cmd.OutOrStdout(), output, result.Output); err != nil {
		return err
	}
	dest := output
	if dest == "" || dest == "-" {
		dest = "stdout"
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s, %s KB, %s, seed %d -> %s\n",
		result.RecordLabel(), result.SizeKB(), strings.ToUpper(result.Format), result.Seed, dest)
	return nil
}
