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

var booksCollection string

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: i18n.T("books.description"),
	RunE:  runBooks,
}

func init() {
	booksCmd.Flags().StringVar(&booksCollection, "collection", "", i18n.T("ask.flag.collection"))
	rootCmd.AddCommand(booksCmd)
}

func runBooks(cmd *cobra.Command, args []string) error {
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

	if booksCollection != "" {
		titles, err := a.Evidence.ListTitles(ctx, booksCollection)
		if err != nil {
			return err
		}
		printTitles(booksCollection, titles)
		return nil
	}

	catalog, err := a.Evidence.Catalog(ctx)
	if err != nil {
		return err
	}
	fmt.Println(i18n.T("books.title"))
	for _, coll := range a.Evidence.Collections() {
		printTitles(coll, catalog[coll])
	}
	return nil
}

func printTitles(collection string, titles []string) {
	fmt.Printf("%s:\n", collection)
	if len(titles) == 0 {
		fmt.Println("  " + i18n.T("books.empty"))
		return
	}
	for _, t := range titles {
		fmt.Println("  - " + t)
	}
}
