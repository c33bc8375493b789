package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pustakabot/pustaka/internal/evidence"
	"github.com/pustakabot/pustaka/internal/i18n"
)

func TestStripMeta(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "drops editorial acknowledgement lines",
			in:   "Terima kasih atas masukan pemeriksa.\nInti jawaban di sini.\nRujukan: [book:A, page:1]",
			want: "Inti jawaban di sini.\nRujukan: [book:A, page:1]",
		},
		{
			name: "drops revision announcements case insensitively",
			in:   "BERIKUT ADALAH PERBAIKAN versi final:\nJawaban inti.",
			want: "Jawaban inti.",
		},
		{
			name: "drops book scaffolding headers",
			in:   "PART IV\nBAB 3 Pendahuluan\nCHAPTER 12\nIsi sebenarnya.",
			want: "Isi sebenarnya.",
		},
		{
			name: "drops numbered scan artifacts",
			in:   "12 - potongan halaman pindaian\nKalimat asli.",
			want: "Kalimat asli.",
		},
		{
			name: "keeps clean answers untouched",
			in:   "Inti jawaban.\nRujukan: [book:A, page:1]",
			want: "Inti jawaban.\nRujukan: [book:A, page:1]",
		},
		{
			name: "returns original when everything would be removed",
			in:   "Berikut adalah perbaikan.",
			want: "Berikut adalah perbaikan.",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripMeta(tt.in))
		})
	}
}

func TestEnsureGrounding(t *testing.T) {
	grounded := "Inti.\nRujukan: [book:A, page:1]"
	assert.Equal(t, grounded, EnsureGrounding(grounded))

	bare := "Jawaban umum tanpa sitasi."
	got := EnsureGrounding(bare)
	assert.True(t, strings.HasPrefix(got, i18n.T("answer.no_citation_preamble")))
	assert.True(t, strings.HasSuffix(got, bare))
}

func TestGuardrail(t *testing.T) {
	flags := Guardrail("Jawaban ini bersifat umum.")
	assert.True(t, flags.TooGeneral)
	assert.False(t, flags.HasReferences)

	flags = Guardrail("Rujukan: [book:abc, page:1]")
	assert.True(t, flags.HasReferences)
	assert.False(t, flags.TooGeneral)

	flags = Guardrail("jawaban ini bersifat umum, tapi ada Rujukan: [book:a, page:2]")
	assert.True(t, flags.TooGeneral)
	assert.True(t, flags.HasReferences)
}

func TestPickCitations(t *testing.T) {
	withPage := func(content, page string) evidence.Document {
		return evidence.Document{
			Content:  content,
			Metadata: map[string]string{evidence.MetaSource: "s.pdf", evidence.MetaPage: page},
		}
	}
	sparse := withPage("pendek", "")
	pageless := evidence.Document{
		Content:  strings.Repeat("padat ", 200),
		Metadata: map[string]string{evidence.MetaSource: "s.pdf"},
	}
	dense := withPage(strings.Repeat("isi padat ", 120), "4")
	short := withPage("cukup pendek", "9")

	got := PickCitations([]evidence.Document{sparse, pageless, dense, short}, 2)
	assert.Equal(t, []evidence.Document{dense, short}, got)

	// Page-bearing beats pageless even when the pageless one is denser.
	got = PickCitations([]evidence.Document{pageless, short}, 1)
	assert.Equal(t, []evidence.Document{short}, got)

	assert.Nil(t, PickCitations(nil, 3))
	assert.Nil(t, PickCitations([]evidence.Document{short}, 0))
}
