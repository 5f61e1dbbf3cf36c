package media

import (
	"strings"

	"golang.org/x/text/cases"
	textlang "golang.org/x/text/language"
)

type language struct {
	code2   string
	code3   string
	alt3    string
	display string
	words   []string
}

var languages = []language{
	{"en", "eng", "", "English", []string{"english"}},
	{"ru", "rus", "", "Russian", []string{"russian"}},
	{"fa", "fas", "per", "Persian", []string{"persian", "farsi"}},
	{"es", "spa", "", "Spanish", []string{"spanish"}},
	{"fr", "fra", "fre", "French", []string{"french"}},
	{"de", "deu", "ger", "German", []string{"german"}},
	{"it", "ita", "", "Italian", []string{"italian"}},
	{"pt", "por", "", "Portuguese", []string{"portuguese"}},
	{"tr", "tur", "", "Turkish", []string{"turkish"}},
	{"uk", "ukr", "", "Ukrainian", []string{"ukrainian"}},
	{"ja", "jpn", "", "Japanese", []string{"japanese"}},
	{"ko", "kor", "", "Korean", []string{"korean"}},
	{"zh", "zho", "chi", "Chinese", []string{"chinese"}},
	{"ar", "ara", "", "Arabic", []string{"arabic"}},
	{"hi", "hin", "", "Hindi", []string{"hindi"}},
	{"nl", "nld", "dut", "Dutch", []string{"dutch"}},
	{"pl", "pol", "", "Polish", []string{"polish"}},
}

var languageIndex = func() map[string]*language {
	index := make(map[string]*language, len(languages)*4)
	for i := range languages {
		l := &languages[i]
		index[l.code2] = l
		index[l.code3] = l
		if l.alt3 != "" {
			index[l.alt3] = l
		}
		for _, w := range l.words {
			index[w] = l
		}
	}
	return index
}()

// baseLanguage strips the auto-caption marker ("a.en") and any region or
// script suffix ("en-US", "pt_BR", "zh-Hans").
func baseLanguage(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	code = strings.TrimPrefix(code, "a.")
	if i := strings.IndexAny(code, "-_."); i > 0 {
		code = code[:i]
	}
	return code
}

// NormalizeLanguage converts a language tag, ISO 639-2 code or English
// name to its ISO 639-1 code. Unknown two-letter codes pass through;
// anything else unknown returns "".
func NormalizeLanguage(code string) string {
	base := baseLanguage(code)
	if base == "" {
		return ""
	}
	if l, ok := languageIndex[base]; ok {
		return l.code2
	}
	if len(base) == 2 {
		return base
	}
	return ""
}

// LanguageName returns the English display name for a language code, or
// the upper-cased code when it is not in the table.
func LanguageName(code string) string {
	if l, ok := languageIndex[baseLanguage(code)]; ok {
		return l.display
	}
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	return cases.Upper(textlang.Und).String(strings.TrimSpace(code))
}

// MatchLanguage reports whether a track tag belongs to the wanted
// language. Matching is by prefix, so "en-US" and "a.en" both match "en".
func MatchLanguage(track, want string) bool {
	w := NormalizeLanguage(want)
	return w != "" && NormalizeLanguage(track) == w
}

// NormalizeLanguages deduplicates and normalizes a list of language codes.
func NormalizeLanguages(codes []string) []string {
	if len(codes) == 0 {
		return nil
	}
	out := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		n := NormalizeLanguage(code)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
