package i18n

// loadIndonesianMessages loads all Indonesian translations
func loadIndonesianMessages() {
	messages[LangID] = map[string]string{
		// Common
		"app.name":        "Pustaka",
		"app.description": "Agen tanya-jawab berbasis kutipan buku",
		"app.version":     "Pustaka v%s",

		// Answer surface
		"answer.not_found": "Tidak ditemukan di indeks.",
		"answer.no_citation_preamble": "Sepertinya bagian ini tidak dijelaskan secara eksplisit dalam kutipan buku. " +
			"Namun secara umum, dan dari sudut pandang psikologis:\n\n",

		// Errors
		"error.generic":        "Maaf, terjadi kesalahan saat menjawab. Coba lagi sebentar lagi.",
		"error.config":         "Gagal memuat konfigurasi: %v",
		"error.question.empty": "Pertanyaan tidak boleh kosong",
		"error.no_collections": "Tidak ada koleksi di indeks. Pastikan data sudah dimuat.",

		// CLI
		"ask.description":         "Ajukan pertanyaan ke indeks buku",
		"ask.flag.collection":     "batasi pencarian ke satu koleksi",
		"ask.flag.style":          "gaya jawaban (netral, hangat, terapis, pengajar, rekan)",
		"ask.flag.mode":           "mode jawaban (ringkas, panjang, bullet, banding, definisi, langkah)",
		"ask.flag.user":           "id pengguna untuk memori percakapan",
		"ask.flag.sources":        "tampilkan daftar sumber setelah jawaban",
		"ask.flag.why":            "tampilkan rencana dan kritik setelah jawaban",
		"ask.sources.title":       "Sumber:",
		"chat.description":        "Mulai sesi percakapan interaktif",
		"chat.welcome":            "Sesi dimulai. Ketik /selesai untuk mengakhiri, /topik <topik> untuk menandai topik.",
		"chat.bye":                "Sesi selesai.",
		"books.description":       "Daftar judul buku yang terindeks",
		"books.title":             "Judul buku per koleksi:",
		"books.empty":             "Tidak ada judul ditemukan",
		"collections.description": "Daftar koleksi yang dikenal",
		"collections.title":       "Koleksi:",
		"migrate.description":     "Jalankan migrasi basis data yang tertunda",
		"migrate.ok":              "Migrasi selesai",
		"version.description":     "Tampilkan informasi versi",
		"answer.plan.title":       "Rencana:",
		"answer.critique.title":   "Kritik:",
	}
}
