package slug

import (
	"regexp"
	"strings"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// foldReplacer maps common Latin letters with diacritics to ASCII.
var foldReplacer = strings.NewReplacer(
	"à", "a", "á", "a", "â", "a", "ä", "a", "ã", "a", "å", "a",
	"ç", "c", "è", "e", "é", "e", "ê", "e", "ë", "e",
	"ğ", "g", "ì", "i", "í", "i", "î", "i", "ï", "i", "ı", "i",
	"ñ", "n", "ò", "o", "ó", "o", "ô", "o", "ö", "o", "õ", "o", "ø", "o",
	"ş", "s", "ß", "ss", "ù", "u", "ú", "u", "û", "u", "ü", "u",
)

// Generate creates a URL-friendly slug from a product name.
//
//   - "White Jacket"      → "white-jacket"
//   - "MacBook Pro 13”"   → "macbook-pro-13"
//   - "Crème Brûlée Mug"  → "creme-brulee-mug"
func Generate(name string) string {
	s := foldReplacer.Replace(strings.ToLower(strings.TrimSpace(name)))
	s = slugRegexp.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ProductPath returns the storefront detail path for a product name.
func ProductPath(name string) string {
	return "/product/" + Generate(name)
}
