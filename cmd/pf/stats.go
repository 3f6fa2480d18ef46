package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show completion statistics from the archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fs, err := openFiles(cfg)
			if err != nil {
				return err
			}
			today, _, err := resolveToday(fs)
			if err != nil {
				return err
			}
			if year == 0 {
				year = today.Year
			}

			archive, closeArchive, err := openArchive(cfg)
			if err != nil {
				return err
			}
			if archive == nil {
				return fmt.Errorf("completion archive is disabled (set archive.path in the config)")
			}
			defer closeArchive()

			st, err := archive.Stats(year, today)
			if err != nil {
				return err
			}

			fmt.Printf("Completions: %d (%d done, %d canceled)\n", st.Total, st.Done, st.Canceled)
			fmt.Printf("\n%d by month:\n", year)
			peak := 0
			for _, n := range st.ByMonth {
				if n > peak {
					peak = n
				}
			}
			for i, n := range st.ByMonth {
				bar := ""
				if peak > 0 {
					bar = strings.Repeat("█", n*20/peak)
				}
				fmt.Printf("  %s %3d %s\n", time.Month(i+1).String()[:3], n, bar)
			}
			fmt.Printf("\nCurrent streak: %s\n", days(st.CurrentStreak))
			fmt.Printf("Longest streak: %s\n", days(st.LongestStreak))
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "year for the monthly breakdown (default this year)")
	return cmd
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
