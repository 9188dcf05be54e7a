// Package ctl implements profilectl, the operator CLI: schema migrations
// and account administration against the server's database.
package ctl

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/profilekeeper/internal/dbx"
	"github.com/dmitrijs2005/profilekeeper/internal/server/config"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/repomanager"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

// env holds what every subcommand needs. Tests replace openDB and stdin.
type env struct {
	dsn    string
	stdin  io.Reader
	stdout io.Writer
	rm     repomanager.RepositoryManager
	openDB func(ctx context.Context, cfg *config.Config) (*sql.DB, error)
}

func defaultOpenDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	return dbx.Open(ctx, repomanager.DriverName, cfg.DatabaseDSN, cfg.DatabaseConnectTimeout)
}

func (e *env) loadConfig() *config.Config {
	cfg := config.LoadConfig()
	if e.dsn != "" {
		cfg.DatabaseDSN = e.dsn
	}
	return cfg
}

func (e *env) withDB(ctx context.Context, fn func(cfg *config.Config, db *sql.DB) error) error {
	cfg := e.loadConfig()
	db, err := e.openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(cfg, db)
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&env{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		rm:     repomanager.NewPostgresRepositoryManager(),
		openDB: defaultOpenDB,
	})
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "profilectl",
		Short:         "Administer a profilekeeper deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(e.stdout)
	root.PersistentFlags().StringVar(&e.dsn, "dsn", "", "database DSN (overrides DATABASE_DSN)")

	root.AddCommand(newVersionCmd(e))
	root.AddCommand(newMigrateCmd(e))
	root.AddCommand(newUserCmd(e))

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(e.stdout, "profilectl %s (commit=%s, built=%s)\n", Version, CommitSHA, BuildDate)
		},
	}
}

func newMigrateCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withDB(cmd.Context(), func(_ *config.Config, db *sql.DB) error {
				if err := e.rm.RunMigrations(cmd.Context(), db); err != nil {
					return err
				}
				fmt.Fprintln(e.stdout, "migrations applied")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withDB(cmd.Context(), func(_ *config.Config, db *sql.DB) error {
				return e.rm.MigrationStatus(cmd.Context(), db)
			})
		},
	})

	return cmd
}
