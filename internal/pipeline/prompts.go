package pipeline

import (
	"fmt"
	"strings"
)

// The prompt templates are Indonesian on purpose: the indexed corpus and
// the audience are Indonesian, and the control markers the pipeline keys
// on ("Rujukan:", "TIDAK") are part of the prompt contract.

const promptRAG = `Kita hanya menjawab dari KONTEN di bawah. Jika tidak memadai, katakan singkat bahwa jawaban berikut bersifat umum di luar kutipan buku.

%s

Konteks:
%s

Pertanyaan: %s

Format jawaban yang diminta: %s

Gaya bahasa:
- Gunakan kata ganti inklusif "kita" (hindari "Anda").
- Hangat, terapeutik, dan langsung ke inti.
- Hindari nada editorial seperti "berikut perbaikan" atau "terima kasih atas masukan".

Struktur:
1) Inti jawaban 2-4 kalimat.
2) Contoh singkat satu kalimat yang relevan.
3) Rujukan: daftar sitasi [book:<judul>, page:<n>] (maksimal 3).

Jangan menyalin panjang-panjang dari konteks. Hindari istilah terlalu kaku bila ada padanannya di Indonesia.
`

const promptRewrite = `Perhalus teks agar terdengar alami sesuai gaya "%s" tanpa mengubah fakta.
Gunakan kata ganti "kita" (hindari "Anda"). Jangan gunakan frasa meta seperti "berikut perbaikan".
Pertahankan blok "Rujukan:" beserta isinya tanpa perubahan.

Teks:
%s
`

const promptSummarize = `Ringkas riwayat dialog berikut menjadi poin kontekstual pendek (maksimum 800 karakter).
Fokus pada tujuan, preferensi gaya, dan istilah yang sudah didefinisikan. Jangan menyimpulkan hal baru.

Riwayat:
%s
`

const promptCritic = `Anda adalah pemeriksa singkat.
Periksa draf jawaban berikut terhadap konteks sitasi.

Jawab dengan tiga baris "YA/TIDAK: alasan singkat" untuk:
1) Didukung konteks?
2) Rujukan cukup spesifik?
3) Ada klaim di luar konteks?

Draf:
%s
`

const promptRefine = `Perhalus jawaban berikut agar hangat, terapeutik, dan langsung ke inti.
Gaya bahasa:
- Gunakan kata ganti inklusif "kita" (hindari "Anda").
- Hindari kalimat meta (mis. 'berikut perbaikan', 'terima kasih atas masukan').

Jika sebagian informasi tidak terdapat dalam kutipan buku, sebutkan singkat bahwa sisanya bersifat umum.
Jaga blok "Rujukan:" bila ada, jangan ubah formatnya.

Jawaban awal:
%s

Kritik:
%s

Tulis versi akhir yang siap diberikan ke pengguna.
`

const promptPlanner = `Buat rencana singkat 3-5 langkah untuk menjawab pertanyaan berikut dengan mengandalkan kutipan dari konteks buku (RAG).
Formatkan sebagai bullet, setiap bullet 1 kalimat, tanpa narasi tambahan.

Pertanyaan: %s
Mode yang diminta: %s
`

// StyleHints maps a style name to the tone description injected into the
// rewrite prompt.
var StyleHints = map[string]string{
	"netral":   "netral, profesional, langsung ke pokok",
	"hangat":   "ramah, empatik, namun tetap ringkas",
	"terapis":  "hangat, validatif, reflektif, fokus menenangkan",
	"pengajar": "jelas, bertahap, definisi lalu contoh",
	"rekan":    "akrab seperlunya, non-formal ringan",
}

// ModeHints maps an answer mode to its format instruction.
var ModeHints = map[string]string{
	"ringkas":  "Ringkas 3-5 kalimat.",
	"panjang":  "Lebih detail 6-10 kalimat, tetap jelas.",
	"bullet":   "Gunakan bullet points untuk ide utama.",
	"banding":  "Tulis perbandingan A vs B bila relevan; gunakan bullet.",
	"definisi": "Mulai dengan definisi 1-2 kalimat, lalu poin kunci.",
	"langkah":  "Berikan langkah-langkah praktis bernomor.",
}

// DefaultStyle is assumed when a requested style is unknown.
const DefaultStyle = "terapis"

// defaultFormatHint is used when the requested mode is unknown.
const defaultFormatHint = "Ikuti format default yang paling jelas."

// styleHint resolves a style name to its hint, falling back to the default.
func styleHint(style string) string {
	if h, ok := StyleHints[strings.ToLower(style)]; ok {
		return h
	}
	return StyleHints[DefaultStyle]
}

// formatHint resolves a mode to its hint, falling back to the default.
func formatHint(mode string) string {
	if h, ok := ModeHints[strings.ToLower(mode)]; ok {
		return h
	}
	return defaultFormatHint
}

// HistoryPair is one past question/answer exchange.
type HistoryPair struct {
	Question string
	Answer   string
}

// historyBlock renders the conversation context injected into the draft
// prompt. The header appears even when there is nothing to show, so the
// model always sees the same prompt shape.
func historyBlock(history []HistoryPair, memorySummary string) string {
	var parts []string
	if memorySummary != "" {
		parts = append(parts, "Ringkasan memori: "+memorySummary)
	}
	for _, h := range history {
		q := strings.ReplaceAll(strings.TrimSpace(h.Question), "\n", " ")
		a := strings.ReplaceAll(strings.TrimSpace(h.Answer), "\n", " ")
		parts = append(parts, fmt.Sprintf("- Q: %s\n  A: %s", q, a))
	}
	body := "(tidak ada)"
	if len(parts) > 0 {
		body = strings.Join(parts, "\n")
	}
	return "Riwayat singkat:\n" + body
}
