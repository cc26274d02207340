package main

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/samwarb/amazing-marvin/internal/config"
	"github.com/samwarb/amazing-marvin/internal/llm"
	"github.com/samwarb/amazing-marvin/internal/marvin"
	"github.com/samwarb/amazing-marvin/internal/report"
	"github.com/samwarb/amazing-marvin/internal/tidy"
)

func tidyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tidy",
		Short: "Run the daily maintenance pass over today's tasks and the inbox",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			log := logrus.New()
			usage := llm.NewTracker()

			store := marvin.NewClient(cfg.Marvin.BaseURL, cfg.Marvin.APIToken, cfg.Marvin.FullAccessToken)
			completer := llm.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model)
			norm := tidy.NewNormalizer(completer, usage, cfg.MediaPolicy())

			today := time.Now().Format("2006-01-02")
			runner := tidy.NewRunner(store, norm, log, today, cfg.WriteDelay())

			stats, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Println("\nAll done!")
			fmt.Printf("  Spelling fixes (tasks):          %d\n", stats.SpellFixed)
			fmt.Printf("  Dates assigned:                  %d\n", stats.DatesAssigned)
			fmt.Printf("  Projects assigned (inbox):       %d\n", stats.ProjectsAssigned)
			fmt.Printf("  Notes tidied (tasks + projects): %d\n", stats.NotesTidied)

			report.PrintUsage(cmd.OutOrStdout(), usage.Snapshot(), cfg.Pricing())
			return nil
		},
	}
}
