package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/planfile/planfile/internal/gcal"
	"github.com/planfile/planfile/internal/ics"
)

func icsCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "ics [range]",
		Short: "Export entries as an iCalendar file",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			l, err := buildListing(cfg, strings.Join(args, " "))
			if err != nil {
				return err
			}

			calendar := ics.Export(l.fs, l.entries, time.Now())
			if out == "" {
				fmt.Print(calendar)
				return nil
			}
			return os.WriteFile(out, []byte(calendar), 0o644)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write to a file instead of stdout")
	return cmd
}

func gcalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gcal",
		Short: "Google Calendar integration",
	}
	cmd.AddCommand(gcalAuthCmd())
	cmd.AddCommand(gcalPushCmd())
	return cmd
}

func gcalAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to your Google Calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !gcal.IsConfigured() {
				return fmt.Errorf("set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET first")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client := gcal.NewOAuthClient(gcal.DefaultOAuthConfig())
			token, err := client.StartFlow(cmd.Context())
			if err != nil {
				return err
			}
			if err := gcal.SaveToken(cfg.Gcal.TokenPath, token); err != nil {
				return err
			}
			fmt.Printf("authorized, token cached at %s\n", cfg.Gcal.TokenPath)
			return nil
		},
	}
}

func gcalPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push [range]",
		Short: "Push entries of a range to Google Calendar",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			token, err := gcal.LoadToken(cfg.Gcal.TokenPath)
			if err != nil {
				return fmt.Errorf("no cached token (run pf gcal auth): %w", err)
			}

			l, err := buildListing(cfg, strings.Join(args, " "))
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			client, err := gcal.NewClient(ctx, gcal.NewOAuthClient(gcal.DefaultOAuthConfig()), token, cfg.Gcal.Calendar)
			if err != nil {
				return err
			}
			result, err := client.Push(ctx, l.fs, l.entries, l.rng)
			if err != nil {
				return err
			}
			fmt.Printf("pushed %s to %q: %d created, %d updated, %d deleted\n",
				l.rng, cfg.Gcal.Calendar, result.Created, result.Updated, result.Deleted)
			return nil
		},
	}
}
