package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/veridoc-tech/veridoc/internal/document"
)

// StringFields lists every text field the generic cleaning pass rewrites.
// Date fields are excluded: they are canonicalized by the date pass and the
// "/" separators must survive.
var StringFields = []string{
	document.FieldNumber,
	document.FieldCountry,
	document.FieldName,
	document.FieldSurname,
	document.FieldMiddleName,
	document.FieldGender,
	document.FieldPlaceOfBirth,
	document.FieldMotherName,
	document.FieldFatherName,
	document.FieldSpouseName,
	document.FieldPlaceOfIssue,
	document.FieldCountryOfIssue,
	document.FieldMRZSurname,
	document.FieldMRZName,
}

// asciiFold strips combining marks after NFD decomposition so accented
// letters fall back to their base ASCII form.
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// sentinels are OCR placeholder strings that mean "no value".
var sentinels = map[string]struct{}{
	"NAN": {}, "NONE": {}, "NULL": {}, "N/A": {}, "NA": {},
}

// CleanString uppercases s, transliterates accented letters to ASCII,
// replaces everything outside letters/digits/spaces with a space, and
// collapses runs of whitespace. Placeholder values like "NaN" clean to "".
func CleanString(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if _, ok := sentinels[strings.ToUpper(s)]; ok {
		return ""
	}

	folded, _, err := transform.String(asciiFold, s)
	if err == nil {
		s = folded
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToUpper(s) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
