package citation

import "strings"

// languageNames maps the ISO codes the registry reports to the display
// labels used for language entities on the graphs.
var languageNames = map[string]string{
	"en": "English",
	"de": "German",
	"fr": "French",
	"es": "Spanish",
	"it": "Italian",
	"pt": "Portuguese",
	"nl": "Dutch",
	"ru": "Russian",
	"zh": "Chinese",
	"ja": "Japanese",
	"ko": "Korean",
	"pl": "Polish",
	"sv": "Swedish",
	"da": "Danish",
	"fi": "Finnish",
	"no": "Norwegian",
	"cs": "Czech",
	"hu": "Hungarian",
	"tr": "Turkish",
	"ar": "Arabic",
}

// LanguageName resolves a language code to its display label. Unknown
// codes fall back to the code itself so rendering stays total.
func LanguageName(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}
