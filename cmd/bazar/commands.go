package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/mkamalov/bazar/database/seeders"
	"github.com/mkamalov/bazar/internal/server"
	"github.com/mkamalov/bazar/pkg/database"
	"github.com/mkamalov/bazar/pkg/logger"
	"github.com/mkamalov/bazar/pkg/migration"
	"github.com/mkamalov/bazar/pkg/queue"
	"github.com/mkamalov/bazar/pkg/schedule"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and gRPC servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.Run()
		},
	}
}

// withDB boots shared infrastructure and hands the command a migration
// runner, closing the database afterwards.
func withDB(fn func(*migration.Runner) error) error {
	if err := server.Boot(context.Background()); err != nil {
		return err
	}
	defer database.Close() //nolint:errcheck

	runner := migration.New(database.DB)
	if err := runner.EnsureTable(); err != nil {
		return err
	}
	return fn(runner)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(r *migration.Runner) error { return r.Run() })
		},
	}
}

func migrateRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate:rollback",
		Short: "Roll back the last migration batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(r *migration.Runner) error { return r.Rollback() })
		},
	}
}

func migrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate:status",
		Short: "Show the status of every migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(r *migration.Runner) error { return r.Status() })
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the database with demo data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(r *migration.Runner) error {
				if err := r.Run(); err != nil {
					return err
				}
				if err := seeders.Run(database.DB); err != nil {
					return err
				}
				fmt.Println("database seeded")
				return nil
			})
		},
	}
}

func routeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route:list",
		Short: "Print every mounted route",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := server.Boot(context.Background()); err != nil {
				return err
			}
			defer database.Close() //nolint:errcheck

			r, err := server.BuildRouter()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "METHOD\tPATH\tNAME")
			for _, route := range r.Routes() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", route.Method, route.Path, route.Name)
			}
			return w.Flush()
		},
	}
}

func queueWorkCmd() *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "queue:work",
		Short: "Run queue workers until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := server.Boot(ctx); err != nil {
				return err
			}
			defer database.Close() //nolint:errcheck

			logger.Info("queue workers started", "workers", workers)
			queue.StartWorkers(ctx, workers)
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 4, "number of concurrent workers")
	return cmd
}

func scheduleRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule:run",
		Short: "Run the task scheduler until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := server.Boot(ctx); err != nil {
				return err
			}
			defer database.Close() //nolint:errcheck

			server.RegisterSchedule(ctx)
			schedule.Start(ctx)
			<-ctx.Done()
			return nil
		},
	}
}
