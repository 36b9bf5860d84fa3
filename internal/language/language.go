package language

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Auto is the value that leaves language detection to the engine.
const Auto = "auto"

var byWord = map[string]string{
	"english":    "en",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"japanese":   "ja",
	"korean":     "ko",
	"chinese":    "zh",
	"russian":    "ru",
	"dutch":      "nl",
	"hebrew":     "he",
	"arabic":     "ar",
}

// Normalize resolves value to an ISO 639-1 code. Empty input and "auto"
// return "" so callers can omit the language argument entirely.
func Normalize(value string) (string, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" || value == Auto {
		return "", nil
	}
	if code, ok := byWord[value]; ok {
		return code, nil
	}
	base, err := parseBase(value)
	if err != nil {
		return "", fmt.Errorf("unrecognized language %q: %w", value, err)
	}
	code := base.String()
	if len(code) != 2 {
		// whisper models only ship two-letter codes
		return "", fmt.Errorf("language %q has no two-letter code", value)
	}
	return code, nil
}

// ToISO2 is Normalize without the error: unknown input yields "".
func ToISO2(value string) string {
	code, err := Normalize(value)
	if err != nil {
		return ""
	}
	return code
}

// DisplayName returns the English name of the language, or "Auto" when
// detection is left to the engine.
func DisplayName(value string) string {
	code, err := Normalize(value)
	if err != nil {
		return strings.ToUpper(strings.TrimSpace(value))
	}
	if code == "" {
		return "Auto"
	}
	return display.English.Languages().Name(language.Make(code))
}

func parseBase(value string) (language.Base, error) {
	if strings.ContainsAny(value, "-_") {
		tag, err := language.Parse(strings.ReplaceAll(value, "_", "-"))
		if err != nil {
			return language.Base{}, err
		}
		base, _ := tag.Base()
		return base, nil
	}
	return language.ParseBase(value)
}
