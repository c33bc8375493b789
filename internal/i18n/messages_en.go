package i18n

// loadEnglishMessages loads all English translations
func loadEnglishMessages() {
	messages[LangEN] = map[string]string{
		// Common
		"app.name":        "Pustaka",
		"app.description": "Book-grounded question answering agent",
		"app.version":     "Pustaka v%s",

		// Answer surface
		"answer.not_found": "Not found in the index.",
		"answer.no_citation_preamble": "This part does not seem to be covered explicitly by the indexed book excerpts. " +
			"In general terms, and from a psychological point of view:\n\n",

		// Errors
		"error.generic":        "Sorry, something went wrong while answering. Please try again shortly.",
		"error.config":         "Failed to load configuration: %v",
		"error.question.empty": "Question cannot be empty",
		"error.no_collections": "No collections in the index. Make sure data has been loaded.",

		// CLI
		"ask.description":         "Ask a question against the book index",
		"ask.flag.collection":     "pin retrieval to one collection",
		"ask.flag.style":          "answer style (netral, hangat, terapis, pengajar, rekan)",
		"ask.flag.mode":           "answer mode (ringkas, panjang, bullet, banding, definisi, langkah)",
		"ask.flag.user":           "user id for conversation memory",
		"ask.flag.sources":        "print the source listing after the answer",
		"ask.flag.why":            "print the plan and critique after the answer",
		"ask.sources.title":       "Sources:",
		"chat.description":        "Start an interactive conversation session",
		"chat.welcome":            "Session started. Type /selesai to end, /topik <topic> to tag the topic.",
		"chat.bye":                "Session ended.",
		"books.description":       "List indexed book titles",
		"books.title":             "Book titles per collection:",
		"books.empty":             "No titles found",
		"collections.description": "List known collections",
		"collections.title":       "Collections:",
		"migrate.description":     "Run pending database migrations",
		"migrate.ok":              "Migrations completed",
		"version.description":     "Show version information",
		"answer.plan.title":       "Plan:",
		"answer.critique.title":   "Critique:",
	}
}
