package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/basismind/basismind/internal/store"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := store.Migrate(context.Background(), d.db.Pool); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	fmt.Println("Schema up to date")
	return nil
}
