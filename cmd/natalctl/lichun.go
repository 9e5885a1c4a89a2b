package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/astromirror/natalengine/pkg/chinesecal"
)

func newLiChunCmd() *cobra.Command {
	var dataDir string

	c := &cobra.Command{
		Use:   "lichun <year>",
		Short: "Solve the Li Chun boundary instant for a year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}

			e, err := buildEngine(dataDir, true)
			if err != nil {
				return err
			}

			boundary, err := e.LiChunUTC(year)
			if err != nil {
				return fmt.Errorf("solving Li Chun for %d: %w", year, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t(%s mode)\n",
				year, boundary.Format(time.RFC3339), e.EphemerisMode())
			return nil
		},
	}

	c.Flags().StringVar(&dataDir, "ephemeris-data", "", "VSOP87 data directory (omit for the analytic fallback)")
	return c
}

func newPillarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pillar <year>",
		Short: "Print the sexagenary pillar of a calendrical year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}

			p := chinesecal.PillarForYear(year)
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s %s\t%s %s (%s)\n",
				p.Year, p.Stem, p.Branch, p.Element, p.Animal, p.YinYang)
			return nil
		},
	}
}
