package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/samwarb/amazing-marvin/internal/config"
	"github.com/samwarb/amazing-marvin/internal/llm"
	"github.com/samwarb/amazing-marvin/internal/marvin"
	"github.com/samwarb/amazing-marvin/internal/report"
	"github.com/samwarb/amazing-marvin/internal/search"
)

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query...]",
		Short: "Answer a natural-language question over your projects and tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), args)
		},
	}
}

func runSearch(ctx context.Context, args []string) error {
	query := resolveQuery(args, os.Stdin, os.Stdout)
	if query == "" {
		return errors.New("no search query provided")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logrus.New()
	usage := llm.NewTracker()

	store := marvin.NewClient(cfg.Marvin.BaseURL, cfg.Marvin.APIToken, cfg.Marvin.FullAccessToken)
	completer := llm.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model)

	pipeline := search.NewPipeline(store, completer, usage, log, search.Options{
		MaxRelevant: cfg.Search.MaxRelevant,
		Workers:     cfg.Search.Workers,
	})

	fmt.Printf("Search query: %s\n%s\n", query, strings.Repeat("-", 60))

	result, err := pipeline.Run(ctx, query)
	if err != nil {
		return err
	}

	rule := strings.Repeat("=", 60)
	fmt.Printf("\n%s\nANSWER\n%s\n%s\n%s\n", rule, rule, result.Answer, rule)

	totals := usage.Snapshot()
	report.PrintUsage(os.Stdout, totals, cfg.Pricing())

	if err := report.AppendStepSummary(query, result.Projects, result.Answer, totals, cfg.Pricing()); err != nil {
		log.WithError(err).Warn("could not append step summary")
	}
	if os.Getenv("GITHUB_ACTIONS") != "" {
		if err := report.WriteLastResult("", query, result.Answer, result.Projects); err != nil {
			log.WithError(err).Warn("could not write last result")
		}
	}
	return nil
}
