// Package i18n provides localized user-facing strings.
//
// Indonesian is the primary language of the answer surface (the indexed
// corpus and the prompt templates are Indonesian); English is the fallback
// for operators running the CLI.
package i18n

import (
	"fmt"
	"os"
	"strings"
)

// Supported languages
const (
	LangID = "id"
	LangEN = "en"
)

// currentLang holds the current language setting
var currentLang = LangID

// messages stores all translations
var messages = make(map[string]map[string]string)

// Init initializes the i18n system with the specified language.
func Init(lang string) {
	lang = strings.ToLower(strings.TrimSpace(lang))

	switch lang {
	case "id", "id-id", "indonesian", "bahasa":
		currentLang = LangID
	case "en", "en-us", "english":
		currentLang = LangEN
	default:
		if envLang := os.Getenv("PUSTAKA_LANG"); envLang != "" && !strings.EqualFold(envLang, lang) {
			Init(envLang)
			return
		}
		currentLang = LangID
	}

	loadMessages()
}

// SetLanguage changes the current language.
func SetLanguage(lang string) {
	Init(lang)
}

// GetLanguage returns the current language.
func GetLanguage() string {
	return currentLang
}

// T returns the translated message for the given key.
// Falls back to Indonesian, then to the key itself.
func T(key string) string {
	if msg, ok := messages[currentLang][key]; ok {
		return msg
	}
	if msg, ok := messages[LangID][key]; ok {
		return msg
	}
	return key
}

// Sprintf returns the translated and formatted message.
func Sprintf(key string, args ...any) string {
	return fmt.Sprintf(T(key), args...)
}

// loadMessages initializes the message maps.
func loadMessages() {
	messages[LangID] = make(map[string]string)
	messages[LangEN] = make(map[string]string)

	loadIndonesianMessages()
	loadEnglishMessages()
}

// GetSupportedLanguages returns a list of supported language codes.
func GetSupportedLanguages() []string {
	return []string{LangID, LangEN}
}

// IsLanguageSupported checks if a language is supported.
func IsLanguageSupported(lang string) bool {
	lang = strings.ToLower(strings.TrimSpace(lang))
	for _, supported := range GetSupportedLanguages() {
		if strings.EqualFold(lang, supported) {
			return true
		}
	}
	return false
}

func init() {
	if envLang := os.Getenv("PUSTAKA_LANG"); envLang != "" {
		Init(envLang)
	} else {
		Init(LangID)
	}
}
