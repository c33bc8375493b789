package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pustakabot/pustaka/internal/agent"
	"github.com/pustakabot/pustaka/internal/app"
	"github.com/pustakabot/pustaka/internal/config"
	"github.com/pustakabot/pustaka/internal/i18n"
	"github.com/pustakabot/pustaka/internal/memory"
	"github.com/pustakabot/pustaka/internal/pipeline"
)

// chatChannel is the fixed channel id for terminal sessions.
const chatChannel = "cli"

var (
	chatCollection string
	chatStyle      string
	chatMode       string
	chatUser       string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: i18n.T("chat.description"),
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatCollection, "collection", "", i18n.T("ask.flag.collection"))
	chatCmd.Flags().StringVar(&chatStyle, "style", "", i18n.T("ask.flag.style"))
	chatCmd.Flags().StringVar(&chatMode, "mode", "", i18n.T("ask.flag.mode"))
	chatCmd.Flags().StringVar(&chatUser, "user", "cli", i18n.T("ask.flag.user"))
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
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

	sess := a.Sessions.Start(chatUser, chatChannel, chatCollection, chatStyle, chatMode, "")
	defer a.Sessions.End(chatUser, chatChannel)

	summarize := func(turns []memory.Turn) (string, error) {
		pairs := make([]pipeline.HistoryPair, 0, len(turns))
		for _, t := range turns {
			pairs = append(pairs, pipeline.HistoryPair{Question: t.Q, Answer: t.A})
		}
		return a.Pipeline.SummarizeHistory(ctx, pairs)
	}

	fmt.Println(i18n.T("chat.welcome"))
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/selesai":
			fmt.Println(i18n.T("chat.bye"))
			return scanner.Err()
		case strings.HasPrefix(line, "/topik "):
			a.Sessions.SetTopic(chatUser, chatChannel, strings.TrimSpace(strings.TrimPrefix(line, "/topik ")))
			continue
		}

		var history []pipeline.HistoryPair
		for _, t := range a.History.Window(chatUser) {
			history = append(history, pipeline.HistoryPair{Question: t.Q, Answer: t.A})
		}

		res, err := a.Agent.Answer(ctx, agent.Request{
			UserID:        chatUser,
			Question:      line,
			Collection:    sess.DefaultCollection,
			Style:         sess.Style,
			Mode:          sess.Mode,
			History:       history,
			MemorySummary: a.History.Summary(chatUser),
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, i18n.T("error.generic"))
			slog.Warn("answering", "error", err)
			continue
		}

		fmt.Println(res.FinalText)
		fmt.Println()

		a.History.AddTurn(chatUser, line, res.FinalText, summarize)
		a.Sessions.BumpTurn(chatUser, chatChannel)
		if err := a.Memory.AppendTurn(chatUser, line, res.FinalText); err != nil {
			slog.Warn("recording turn", "error", err)
		}
	}

	fmt.Println(i18n.T("chat.bye"))
	return scanner.Err()
}
