package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samwarb/amazing-marvin/internal/config"
	"github.com/samwarb/amazing-marvin/internal/marvin"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check configuration and Marvin API connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			fmt.Println("Marvin Assistant Status")
			fmt.Println("=======================")
			fmt.Printf("Marvin API:       %s\n", cfg.Marvin.BaseURL)
			fmt.Printf("Completion model: %s\n", cfg.OpenAI.Model)
			fmt.Printf("Read token:       %s\n", presence(cfg.Marvin.APIToken))
			fmt.Printf("Full token:       %s\n", presence(cfg.Marvin.FullAccessToken))
			fmt.Printf("OpenAI key:       %s\n", presence(cfg.OpenAI.APIKey))

			store := marvin.NewClient(cfg.Marvin.BaseURL, cfg.Marvin.APIToken, cfg.Marvin.FullAccessToken)
			projects, err := store.ActiveProjects(cmd.Context())
			if err != nil {
				fmt.Printf("Connectivity:     FAILED (%v)\n", err)
				return err
			}
			fmt.Printf("Connectivity:     OK (%d active projects)\n", len(projects))
			return nil
		},
	}
}

func presence(secret string) string {
	if secret == "" {
		return "missing"
	}
	return "set"
}
