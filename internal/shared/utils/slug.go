package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SlugPattern matches a finished slug.
var SlugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

var (
	nonSlugChars   = regexp.MustCompile(`[^a-z0-9-]+`)
	repeatedHyphen = regexp.MustCompile(`-+`)
)

// GenerateSlug turns a display name into a URL slug.
//
//	"Молочные продукты" → "molochnye-produkty"
//	"Crème fraîche & Co" → "creme-fraiche-co"
func GenerateSlug(input string) string {
	// Step 1: transliterate Cyrillic and strip Latin diacritics
	ascii := Transliterate(input)

	// Step 2: lowercase, spaces and underscores become hyphens
	lower := strings.ToLower(ascii)
	hyphenated := strings.NewReplacer(" ", "-", "_", "-").Replace(lower)

	// Step 3: keep only a-z, 0-9 and hyphens
	cleaned := nonSlugChars.ReplaceAllString(hyphenated, "")

	// Step 4: collapse and trim hyphens
	normalized := repeatedHyphen.ReplaceAllString(cleaned, "-")
	return strings.Trim(normalized, "-")
}

// cyrillic maps lowercase Russian letters to their common Latin spelling.
var cyrillic = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "shch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

// Transliterate converts Cyrillic to Latin and removes combining marks from Latin letters.
func Transliterate(input string) string {
	var b strings.Builder
	b.Grow(len(input))

	for _, r := range input {
		lower := unicode.ToLower(r)
		if latin, ok := cyrillic[lower]; ok {
			if r != lower && latin != "" {
				latin = strings.ToUpper(latin[:1]) + latin[1:]
			}
			b.WriteString(latin)
			continue
		}

		for _, d := range norm.NFD.String(string(r)) {
			if !unicode.Is(unicode.Mn, d) {
				b.WriteRune(d)
			}
		}
	}

	return b.String()
}
