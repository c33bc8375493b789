package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pustakabot/pustaka/internal/compact"
	"github.com/pustakabot/pustaka/internal/evidence"
	"github.com/pustakabot/pustaka/internal/i18n"
	"github.com/pustakabot/pustaka/internal/log"
	"github.com/pustakabot/pustaka/internal/pipeline"
	"github.com/pustakabot/pustaka/internal/retrieval"
	"github.com/pustakabot/pustaka/internal/testutil"
)

type fakeRetriever struct {
	docs  []evidence.Document
	focus *retrieval.Focus
	err   error

	questions []string
}

func (f *fakeRetriever) Retrieve(_ context.Context, question, _ string) ([]evidence.Document, *retrieval.Focus, error) {
	f.questions = append(f.questions, question)
	return f.docs, f.focus, f.err
}

func evidenceDocs() []evidence.Document {
	return []evidence.Document{
		{
			Content: "Makna ditemukan lewat tanggung jawab.",
			Metadata: map[string]string{
				evidence.MetaSource:    "msfm.pdf",
				evidence.MetaPage:      "7",
				evidence.MetaBookTitle: "Man's Search for Meaning",
			},
		},
		{
			Content: "Kebebasan memilih sikap tetap ada.",
			Metadata: map[string]string{
				evidence.MetaSource:    "msfm.pdf",
				evidence.MetaPage:      "9",
				evidence.MetaBookTitle: "Man's Search for Meaning",
			},
		},
	}
}

func newAgent(gen pipeline.Generator, r Retriever) *Agent {
	pipe := pipeline.New(gen, compact.New(3, 1200, 3, 280), log.NewNop())
	return New(r, pipe, log.NewNop())
}

func TestAnswer_EmptyQuestionRejected(t *testing.T) {
	a := newAgent(&testutil.ScriptedGenerator{}, &fakeRetriever{})
	_, err := a.Answer(context.Background(), Request{Question: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestAnswer_NoEvidenceIsTerminal(t *testing.T) {
	gen := &testutil.ScriptedGenerator{Default: "tidak boleh terpanggil"}
	a := newAgent(gen, &fakeRetriever{})

	res, err := a.Answer(context.Background(), Request{Question: "apa itu makna?", Mode: "ringkas"})
	require.NoError(t, err)
	assert.Equal(t, i18n.T("answer.not_found"), res.FinalText)
	assert.Empty(t, res.Documents)
	assert.Empty(t, gen.Calls())
}

func TestAnswer_CleanDraftSkipsRefine(t *testing.T) {
	grounded := "Inti jawaban.\nRujukan: [book:Man's Search for Meaning, page:7]"
	gen := &testutil.ScriptedGenerator{
		Rules: []testutil.GenRule{
			{Contains: "Kita hanya menjawab dari KONTEN", Response: grounded},
			{Contains: "Perhalus teks", Response: grounded},
			{Contains: "pemeriksa singkat", Response: "YA: didukung\nYA: spesifik\nYA: tidak ada"},
		},
	}
	a := newAgent(gen, &fakeRetriever{docs: evidenceDocs()})

	res, err := a.Answer(context.Background(), Request{Question: "apa itu makna?", Mode: "ringkas"})
	require.NoError(t, err)
	assert.Equal(t, grounded, res.FinalText)
	assert.Len(t, res.Documents, 2)
	assert.Contains(t, res.Meta.Critique, "YA")
	assert.Empty(t, res.Meta.PlanSteps)

	// draft, rewrite, critique: no refine call.
	assert.Len(t, gen.Calls(), 3)
}

func TestAnswer_MissingCitationTriggersRefine(t *testing.T) {
	gen := &testutil.ScriptedGenerator{
		Rules: []testutil.GenRule{
			{Contains: "Kita hanya menjawab dari KONTEN", Response: "draf tanpa sitasi"},
			{Contains: "Perhalus teks", Response: "jawaban halus tanpa sitasi"},
			{Contains: "pemeriksa singkat", Response: "YA: didukung"},
			{Contains: "Tulis versi akhir", Response: "Versi akhir.\nRujukan: [book:X, page:1]"},
		},
	}
	a := newAgent(gen, &fakeRetriever{docs: evidenceDocs()})

	res, err := a.Answer(context.Background(), Request{Question: "apa itu makna?"})
	require.NoError(t, err)
	assert.Equal(t, "Versi akhir.\nRujukan: [book:X, page:1]", res.FinalText)
	assert.Len(t, gen.Calls(), 4)
}

func TestAnswer_RefinedWithoutCitationGetsPreamble(t *testing.T) {
	gen := &testutil.ScriptedGenerator{
		Rules: []testutil.GenRule{
			{Contains: "pemeriksa singkat", Response: "TIDAK: klaim tanpa dasar"},
			{Contains: "Tulis versi akhir", Response: "Berikut adalah perbaikan.\nJawaban umum saja."},
		},
		Default: "draf tanpa sitasi",
	}
	a := newAgent(gen, &fakeRetriever{docs: evidenceDocs()})

	res, err := a.Answer(context.Background(), Request{Question: "apa itu makna?"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.FinalText, i18n.T("answer.no_citation_preamble")))
	assert.Contains(t, res.FinalText, "Jawaban umum saja.")
	assert.NotContains(t, res.FinalText, "Berikut adalah perbaikan.")
}

func TestAnswer_PlanRunsForLongModes(t *testing.T) {
	gen := &testutil.ScriptedGenerator{
		Rules: []testutil.GenRule{
			{Contains: "Buat rencana singkat", Response: "- cari definisi\n- beri contoh"},
			{Contains: "pemeriksa singkat", Response: "YA"},
		},
		Default: "Jawaban.\nRujukan: [book:X, page:1]",
	}
	a := newAgent(gen, &fakeRetriever{docs: evidenceDocs()})

	res, err := a.Answer(context.Background(), Request{Question: "bandingkan dua buku", Mode: "banding"})
	require.NoError(t, err)
	assert.Equal(t, []string{"cari definisi", "beri contoh"}, res.Meta.PlanSteps)
}

func TestAnswer_GenerationFailurePropagates(t *testing.T) {
	gen := &testutil.ScriptedGenerator{Err: errors.New("service down")}
	a := newAgent(gen, &fakeRetriever{docs: evidenceDocs()})

	_, err := a.Answer(context.Background(), Request{Question: "apa itu makna?"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service down")
}

func TestAnswer_RetrievalFailurePropagates(t *testing.T) {
	a := newAgent(&testutil.ScriptedGenerator{Default: "ok"}, &fakeRetriever{err: errors.New("catalog unavailable")})

	_, err := a.Answer(context.Background(), Request{Question: "apa itu makna?"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog unavailable")
}
