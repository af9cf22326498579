package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/farewatch/farewatch/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "farewatchd",
		Short: "Farewatch daemon",
		Long:  "Farewatch daemon for ingesting flight price observations and serving alerts",
	}

	rootCmd.AddCommand(cli.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
