package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pustakabot/pustaka/internal/app"
	"github.com/pustakabot/pustaka/internal/config"
	"github.com/pustakabot/pustaka/internal/i18n"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: i18n.T("collections.description"),
	RunE:  runCollections,
}

func init() {
	rootCmd.AddCommand(collectionsCmd)
}

func runCollections(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf(i18n.T("error.config"), err)
	}
	i18n.Init(cfg.Language)

	a, err := app.Setup(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Warn("closing app", "error", err)
		}
	}()

	fmt.Println(i18n.T("collections.title"))
	for _, coll := range a.Evidence.Collections() {
		fmt.Println("- " + coll)
	}
	return nil
}
