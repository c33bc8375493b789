package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pustakabot/pustaka/internal/compact"
	"github.com/pustakabot/pustaka/internal/evidence"
	"github.com/pustakabot/pustaka/internal/i18n"
	"github.com/pustakabot/pustaka/internal/log"
	"github.com/pustakabot/pustaka/internal/testutil"
)

func newPipeline(gen Generator) *Pipeline {
	return New(gen, compact.New(3, 1200, 3, 280), log.NewNop())
}

func someDocs() []evidence.Document {
	return []evidence.Document{
		{
			Content: "Makna hidup ditemukan lewat tanggung jawab.",
			Metadata: map[string]string{
				evidence.MetaSource:    "msfm.pdf",
				evidence.MetaPage:      "7",
				evidence.MetaBookTitle: "Man's Search for Meaning",
			},
		},
	}
}

func TestGenerate_EmptyEvidenceShortCircuits(t *testing.T) {
	gen := &testutil.ScriptedGenerator{Default: "tidak boleh terpanggil"}
	p := newPipeline(gen)

	got, err := p.Generate(context.Background(), nil, Request{Question: "apa itu makna?"})
	require.NoError(t, err)
	assert.Equal(t, i18n.T("answer.not_found"), got)
	assert.Empty(t, gen.Calls())
}

func TestGenerate_DraftThenRewrite(t *testing.T) {
	gen := &testutil.ScriptedGenerator{
		Rules: []testutil.GenRule{
			{Contains: "Kita hanya menjawab dari KONTEN", Response: "draf jawaban\n\nRujukan: [book:X, page:1]"},
			{Contains: "Perhalus teks", Response: "jawaban halus\n\nRujukan: [book:X, page:1]"},
		},
	}
	p := newPipeline(gen)

	got, err := p.Generate(context.Background(), someDocs(), Request{
		Question: "apa itu makna?",
		Style:    "hangat",
		Mode:     "ringkas",
	})
	require.NoError(t, err)
	assert.Equal(t, "jawaban halus\n\nRujukan: [book:X, page:1]", got)

	calls := gen.Calls()
	require.Len(t, calls, 2)

	draft := calls[0]
	assert.Equal(t, draftTemperature, draft.Temperature)
	assert.Contains(t, draft.Prompt, "Riwayat singkat:\n(tidak ada)")
	assert.Contains(t, draft.Prompt, "Pertanyaan: apa itu makna?")
	assert.Contains(t, draft.Prompt, ModeHints["ringkas"])
	assert.Contains(t, draft.Prompt, "[book:Man's Search for Meaning, source:msfm.pdf, page:7]")

	rewrite := calls[1]
	assert.Equal(t, rewriteTemperature, rewrite.Temperature)
	assert.Contains(t, rewrite.Prompt, StyleHints["hangat"])
	assert.Contains(t, rewrite.Prompt, "draf jawaban")
}

func TestGenerate_HistoryAndMemoryInPrompt(t *testing.T) {
	gen := &testutil.ScriptedGenerator{Default: "ok"}
	p := newPipeline(gen)

	_, err := p.Generate(context.Background(), someDocs(), Request{
		Question:      "lanjutkan",
		History:       []HistoryPair{{Question: "apa\nitu makna?", Answer: "makna itu personal"}},
		MemorySummary: "pengguna menyukai contoh praktis",
	})
	require.NoError(t, err)

	prompt := gen.Calls()[0].Prompt
	assert.Contains(t, prompt, "Ringkasan memori: pengguna menyukai contoh praktis")
	assert.Contains(t, prompt, "- Q: apa itu makna?\n  A: makna itu personal")
}

func TestGenerate_UnknownStyleAndModeFallBack(t *testing.T) {
	gen := &testutil.ScriptedGenerator{Default: "ok"}
	p := newPipeline(gen)

	_, err := p.Generate(context.Background(), someDocs(), Request{
		Question: "apa itu makna?",
		Style:    "tidak-dikenal",
		Mode:     "aneh",
	})
	require.NoError(t, err)

	calls := gen.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[0].Prompt, defaultFormatHint)
	assert.Contains(t, calls[1].Prompt, StyleHints[DefaultStyle])
}

func TestGenerate_DraftFailurePropagates(t *testing.T) {
	gen := &testutil.ScriptedGenerator{Err: errors.New("quota exceeded")}
	p := newPipeline(gen)

	_, err := p.Generate(context.Background(), someDocs(), Request{Question: "apa?"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "drafting answer")
}

func TestPlan_ParsesBulletsAndCaps(t *testing.T) {
	gen := &testutil.ScriptedGenerator{
		Default: "- langkah satu\n\n* langkah dua\n• langkah tiga\nlangkah empat\n- langkah lima\n- langkah enam",
	}
	p := newPipeline(gen)

	steps, err := p.Plan(context.Background(), "apa itu makna?", "panjang")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"langkah satu", "langkah dua", "langkah tiga", "langkah empat", "langkah lima",
	}, steps)
	assert.Equal(t, controlTemperature, gen.Calls()[0].Temperature)
}

func TestNeedsRefine(t *testing.T) {
	tests := []struct {
		name     string
		answer   string
		critique string
		want     bool
	}{
		{"clean answer with citations", "Inti.\nRujukan: [book:A, page:1]", "YA: didukung\nYA: spesifik\nYA: tidak ada", false},
		{"critic says TIDAK", "Inti.\nRujukan: [book:A, page:1]", "TIDAK: klaim tanpa dasar", true},
		{"missing citation block", "Inti tanpa rujukan.", "YA: didukung", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsRefine(tt.answer, tt.critique))
		})
	}
}

func TestCritiqueAndRefinePassTemperatures(t *testing.T) {
	gen := &testutil.ScriptedGenerator{Default: "YA: oke"}
	p := newPipeline(gen)

	_, err := p.Critique(context.Background(), "jawaban")
	require.NoError(t, err)
	_, err = p.Refine(context.Background(), "jawaban", "TIDAK: kurang")
	require.NoError(t, err)

	calls := gen.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, controlTemperature, calls[0].Temperature)
	assert.Equal(t, controlTemperature, calls[1].Temperature)
	assert.Contains(t, calls[1].Prompt, "TIDAK: kurang")
}

func TestSummarizeHistory_EmptySkipsModel(t *testing.T) {
	gen := &testutil.ScriptedGenerator{Default: "ringkasan"}
	p := newPipeline(gen)

	got, err := p.SummarizeHistory(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "", got)
	assert.Empty(t, gen.Calls())

	got, err = p.SummarizeHistory(context.Background(), []HistoryPair{{Question: "q", Answer: "a"}})
	require.NoError(t, err)
	assert.Equal(t, "ringkasan", got)
	assert.Contains(t, gen.Calls()[0].Prompt, "User: q\nBot: a")
}
