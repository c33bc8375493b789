package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pustakabot/pustaka/db"
	"github.com/pustakabot/pustaka/internal/config"
	"github.com/pustakabot/pustaka/internal/i18n"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: i18n.T("migrate.description"),
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf(i18n.T("error.config"), err)
	}
	i18n.Init(cfg.Language)

	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return err
	}
	fmt.Println(i18n.T("migrate.ok"))
	return nil
}
