package search

// Language selects the locale of the external search.
type Language string

// Supported languages.
const (
	LanguageKorean  Language = "ko"
	LanguageEnglish Language = "en"
	LanguageBoth    Language = "both"
)

// Locale holds the provider's country (gl) and interface language (hl).
type Locale struct {
	Country  string
	Language string
}

var locales = map[Language]Locale{
	LanguageKorean:  {Country: "kr", Language: "ko"},
	LanguageEnglish: {Country: "us", Language: "en"},
	// A single Korean-locale query, not one query per language.
	LanguageBoth: {Country: "kr", Language: "ko"},
}

// LocaleFor returns the search locale for a language.
// Unknown or empty languages use the LanguageBoth locale.
func LocaleFor(lang Language) Locale {
	if locale, ok := locales[lang]; ok {
		return locale
	}
	return locales[LanguageBoth]
}
