package domain

// Language selects the label set and the language of generated insights.
type Language string

const (
	Japanese Language = "ja"
	English  Language = "en"
)

// ParseLanguage returns the Language for tag, defaulting to Japanese.
func ParseLanguage(tag string) Language {
	if Language(tag) == English {
		return English
	}
	return Japanese
}
