package config

import "log/slog"

const (
	LangEN = "en"
	LangES = "es"
)

// GetLocaleConfig maps lang onto a supported locale, falling back to English.
func GetLocaleConfig(lang string) string {
	switch lang {
	case LangEN:
		return LangEN
	case LangES:
		return LangES
	default:
		slog.Warn("unsupported language, using English", "language", lang)
		return LangEN
	}
}
