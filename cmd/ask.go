package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pustakabot/pustaka/internal/agent"
	"github.com/pustakabot/pustaka/internal/app"
	"github.com/pustakabot/pustaka/internal/compact"
	"github.com/pustakabot/pustaka/internal/config"
	"github.com/pustakabot/pustaka/internal/i18n"
	"github.com/pustakabot/pustaka/internal/pipeline"
)

var (
	askCollection string
	askStyle      string
	askMode       string
	askUser       string
	askSources    bool
	askWhy        bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: i18n.T("ask.description"),
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askCollection, "collection", "", i18n.T("ask.flag.collection"))
	askCmd.Flags().StringVar(&askStyle, "style", "", i18n.T("ask.flag.style"))
	askCmd.Flags().StringVar(&askMode, "mode", "", i18n.T("ask.flag.mode"))
	askCmd.Flags().StringVar(&askUser, "user", "cli", i18n.T("ask.flag.user"))
	askCmd.Flags().BoolVar(&askSources, "sources", false, i18n.T("ask.flag.sources"))
	askCmd.Flags().BoolVar(&askWhy, "why", false, i18n.T("ask.flag.why"))
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf(i18n.T("error.config"), err)
	}
	i18n.Init(cfg.Language)

	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("%s", i18n.T("error.question.empty"))
	}

	style := askStyle
	if style == "" {
		style = cfg.DefaultStyle
	}
	mode := askMode
	if mode == "" {
		mode = cfg.DefaultMode
	}
	if !slices.Contains(config.KnownStyles, strings.ToLower(style)) {
		return fmt.Errorf("unknown style %q (known: %s)", style, strings.Join(config.KnownStyles, ", "))
	}
	if !slices.Contains(config.KnownModes, strings.ToLower(mode)) {
		return fmt.Errorf("unknown mode %q (known: %s)", mode, strings.Join(config.KnownModes, ", "))
	}

	a, err := app.Setup(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Warn("closing app", "error", err)
		}
	}()

	history, memorySummary := loadConversationContext(a, askUser, cfg.HistoryWindow)

	res, err := a.Agent.Answer(ctx, agent.Request{
		UserID:        askUser,
		Question:      question,
		Collection:    askCollection,
		Style:         style,
		Mode:          mode,
		History:       history,
		MemorySummary: memorySummary,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, i18n.T("error.generic"))
		return err
	}

	fmt.Println(res.FinalText)

	if askSources && len(res.Documents) > 0 {
		fmt.Println()
		fmt.Println(i18n.T("ask.sources.title"))
		for _, line := range compact.FormatCitations(res.Documents, 220) {
			fmt.Println(line)
		}
	}
	if askWhy {
		printMeta(res.Meta)
	}

	// A failed turn is never recorded; only a finished answer reaches here.
	if err := a.Memory.AppendTurn(askUser, question, res.FinalText); err != nil {
		slog.Warn("recording turn", "error", err)
	} else {
		maybeSummarize(ctx, a, askUser, cfg.SummaryTriggerTurns)
	}

	return nil
}

// maybeSummarize condenses today's turns into the rolling summary once the
// day's record grows past the trigger. Summarization failures only warn; the
// turn itself is already persisted.
func maybeSummarize(ctx context.Context, a *app.App, userID string, trigger int) {
	rec, err := a.Memory.ReadDaily(userID, "")
	if err != nil || len(rec.Turns) < trigger {
		return
	}

	pairs := make([]pipeline.HistoryPair, 0, len(rec.Turns))
	for _, t := range rec.Turns {
		pairs = append(pairs, pipeline.HistoryPair{Question: t.Q, Answer: t.A})
	}
	summary, err := a.Pipeline.SummarizeHistory(ctx, pairs)
	if err != nil || summary == "" {
		slog.Warn("summarizing history", "error", err)
		return
	}
	if err := a.Memory.UpdateDailySummary(userID, summary); err != nil {
		slog.Warn("updating daily summary", "error", err)
	}
	if err := a.Memory.UpdateRollingSummary(userID, summary); err != nil {
		slog.Warn("updating rolling summary", "error", err)
	}
}

// loadConversationContext rebuilds the prompt context from persisted
// memory: the last turns of today's record plus the rolling summary.
// Memory read failures degrade to an empty context.
func loadConversationContext(a *app.App, userID string, window int) ([]pipeline.HistoryPair, string) {
	var history []pipeline.HistoryPair

	rec, err := a.Memory.ReadDaily(userID, "")
	if err != nil {
		slog.Warn("reading daily memory", "error", err)
	} else {
		turns := rec.Turns
		if len(turns) > window {
			turns = turns[len(turns)-window:]
		}
		for _, t := range turns {
			history = append(history, pipeline.HistoryPair{Question: t.Q, Answer: t.A})
		}
	}

	summary, err := a.Memory.ReadRollingSummary(userID)
	if err != nil {
		slog.Warn("reading rolling summary", "error", err)
		summary = ""
	}
	return history, summary
}

func printMeta(meta agent.Meta) {
	if len(meta.PlanSteps) > 0 {
		fmt.Println()
		fmt.Println(i18n.T("answer.plan.title"))
		for _, step := range meta.PlanSteps {
			fmt.Println("- " + step)
		}
	}
	if meta.Critique != "" {
		fmt.Println()
		fmt.Println(i18n.T("answer.critique.title"))
		fmt.Println(meta.Critique)
	}
}
