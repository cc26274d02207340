package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "marvin",
		Short:   "Marvin assistant - LLM-powered cleanup and search for Amazing Marvin",
		Version: Version,
	}

	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(tidyCmd())
	rootCmd.AddCommand(statusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
