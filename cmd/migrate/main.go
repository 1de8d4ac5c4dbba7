// Command migrate applies, inspects and rolls back the portfolio schema.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"text/tabwriter"

	"portfolio/internal/config"
	"portfolio/internal/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

// withDB loads config, connects without touching the schema and runs fn.
func withDB(fn func(ctx context.Context, cfg *config.Config, db *gorm.DB) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer func() { _ = database.Close(db) }()
		return fn(cmd.Context(), cfg, db)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the portfolio database schema",
		SilenceUsage: true,
	}

	var plan bool
	up := &cobra.Command{
		Use:   "up",
		Short: "Apply pending SQL migrations",
		Args:  cobra.NoArgs,
		RunE: withDB(func(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
			if plan {
				status, err := database.GetSchemaStatus(ctx, db, cfg)
				if err != nil {
					return err
				}
				printPending(os.Stdout, status)
				return nil
			}
			if err := database.RunMigrations(ctx, db); err != nil {
				return fmt.Errorf("sql migrations failed: %w", err)
			}
			log.Println("sql migrations applied")
			return nil
		}),
	}
	up.Flags().BoolVar(&plan, "plan", false, "List pending migrations without applying them")

	auto := &cobra.Command{
		Use:   "auto",
		Short: "Sync GORM models into the schema (refused in production)",
		Args:  cobra.NoArgs,
		RunE: withDB(func(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
			cfg.DBSchemaMode = database.SchemaModeAuto
			if err := database.ApplySchema(ctx, db, cfg); err != nil {
				return fmt.Errorf("auto schema apply failed: %w", err)
			}
			log.Println("automigrations applied")
			return nil
		}),
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations and content counts",
		Args:  cobra.NoArgs,
		RunE: withDB(func(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
			status, err := database.GetSchemaStatus(ctx, db, cfg)
			if err != nil {
				return fmt.Errorf("schema status failed: %w", err)
			}
			fmt.Printf("mode=%s env=%s run_sql=%t run_auto=%t applied=%d pending=%d\n",
				status.Mode, status.Environment, status.WillRunSQL, status.WillRunAutoMigrate,
				len(status.AppliedVersions), len(status.PendingMigrations))
			printPending(os.Stdout, status)
			printContent(ctx, os.Stdout, db)
			return nil
		}),
	}

	down := &cobra.Command{
		Use:   "down <version>",
		Short: "Roll back one applied migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[0], err)
			}
			return withDB(func(ctx context.Context, _ *config.Config, db *gorm.DB) error {
				if err := database.RollbackMigration(ctx, db, version); err != nil {
					return fmt.Errorf("rollback failed: %w", err)
				}
				log.Printf("rolled back migration %d", version)
				return nil
			})(cmd, args)
		},
	}

	root.AddCommand(up, auto, status, down)
	return root
}

func printPending(w io.Writer, status *database.SchemaStatus) {
	if len(status.PendingMigrations) == 0 {
		fmt.Fprintln(w, "no pending migrations")
		return
	}
	for _, m := range status.PendingMigrations {
		fmt.Fprintf(w, "pending: %06d_%s\n", m.Version, m.Name)
	}
}

// printContent counts rows per status in the content tables. Missing tables are skipped.
func printContent(ctx context.Context, w io.Writer, db *gorm.DB) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tSTATUS\tROWS")
	for _, table := range []string{"posts", "projects", "contact_messages"} {
		if !db.Migrator().HasTable(table) {
			continue
		}
		var rows []struct {
			Status string
			N      int64
		}
		err := db.WithContext(ctx).Table(table).
			Select("status, COUNT(*) AS n").Group("status").Order("status").Scan(&rows).Error
		if err != nil {
			fmt.Fprintf(tw, "%s\t?\t%v\n", table, err)
			continue
		}
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", table, r.Status, r.N)
		}
	}
	_ = tw.Flush()
}
