package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/mkamalov/bazar/database/migrations"
)

func main() {
	root := &cobra.Command{
		Use:           "bazar",
		Short:         "Bazar marketplace backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		serveCmd(),
		migrateCmd(),
		migrateRollbackCmd(),
		migrateStatusCmd(),
		seedCmd(),
		routeListCmd(),
		queueWorkCmd(),
		scheduleRunCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
