package migratecmder

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"portfolio-backend/internal/database"
	"portfolio-backend/internal/logger"
)

const migrateLongDesc string = `Apply pending SQL migrations to the portfolio database.

Files named NNN_*.sql are applied in order, each in its own transaction,
and recorded in schema_migrations. Already applied versions are skipped.

Examples:
  portfolioctl migrate
  portfolioctl migrate --dir ./migrations --database-url postgres://localhost/portfolio`

const migrateShortDesc string = "Apply database migrations"

type migrateCommander struct {
	dir         string
	databaseURL string
	debug       bool
}

func NewMigrateCmd() *cobra.Command {
	cmder := &migrateCommander{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: migrateShortDesc,
		Long:  migrateLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.dir, "dir", "d", "migrations", "Directory holding the SQL migrations")
	cmd.Flags().StringVar(&cmder.databaseURL, "database-url", "", "Postgres URL (defaults to DATABASE_URL)")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

func (c *migrateCommander) run(cmd *cobra.Command) error {
	url := c.databaseURL
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		return errors.New("no database configured: pass --database-url or set DATABASE_URL")
	}

	log := logger.New(c.debug)
	defer log.Sync()

	pool, err := database.NewPostgresPool(url)
	if err != nil {
		return fmt.Errorf("could not connect to database: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(pool, c.dir, log); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ migrations applied from %s", c.dir))
	return nil
}
