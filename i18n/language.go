package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Language is a supported display language.
type Language string

const (
	English Language = "en"
	German  Language = "de"
)

var matcher = language.NewMatcher([]language.Tag{language.English, language.German})

// Normalize maps any input to a supported language, defaulting to English.
func Normalize(lang string) Language {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "de", "de-de", "de-at", "de-ch", "german", "deutsch":
		return German
	default:
		return English
	}
}

// Negotiate picks the best supported language from an Accept-Language header.
func Negotiate(acceptLanguage string) Language {
	if acceptLanguage == "" {
		return English
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return English
	}
	_, index, _ := matcher.Match(tags...)
	if index == 1 {
		return German
	}
	return English
}

func (l Language) String() string {
	return string(l)
}
