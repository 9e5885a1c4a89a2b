package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/astromirror/natalengine/internal/engine"
	"github.com/astromirror/natalengine/internal/ephemeris"
	"github.com/astromirror/natalengine/internal/refdata"
	"github.com/astromirror/natalengine/internal/types"
)

func newComputeCmd() *cobra.Command {
	var input string
	var dataDir string
	var allowFallback bool

	c := &cobra.Command{
		Use:   "compute",
		Short: "Compute a natal chart from a birth-input JSON file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := readInput(input)
			if err != nil {
				return err
			}

			var in types.BirthInput
			if err := json.Unmarshal(raw, &in); err != nil {
				return fmt.Errorf("parsing birth input: %w", err)
			}

			e, err := buildEngine(dataDir, allowFallback)
			if err != nil {
				return err
			}

			out, envelope := e.Compute(&in)
			if envelope != nil {
				printJSON(cmd, envelope)
				return fmt.Errorf("computation rejected: %s", envelope.Validation.Summary)
			}
			printJSON(cmd, out)
			return nil
		},
	}

	c.Flags().StringVarP(&input, "input", "i", "", "Birth-input JSON file ('-' for stdin)")
	c.Flags().StringVar(&dataDir, "ephemeris-data", "", "VSOP87 data directory (omit for the analytic fallback)")
	c.Flags().BoolVar(&allowFallback, "allow-fallback", true, "Permit the analytic fallback under strict mode")

	_ = c.MarkFlagRequired("input")
	return c
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func buildEngine(dataDir string, allowFallback bool) (*engine.Engine, error) {
	provider := refdata.NewEmbeddedProvider()
	defer provider.Close()
	tables, err := provider.LoadTables()
	if err != nil {
		return nil, fmt.Errorf("loading reference tables: %w", err)
	}

	eph := ephemeris.New(ephemeris.Config{DataDir: dataDir})
	return engine.New(eph, tables, allowFallback), nil
}

func printJSON(cmd *cobra.Command, data any) {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "encoding output: %v\n", err)
	}
}
