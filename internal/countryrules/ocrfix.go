package countryrules

// digitCorrections maps letters the OCR engine commonly reads in place of
// digits to the digit they stand for. Applied only inside sections of a
// document number that are known to be numeric.
var digitCorrections = map[rune]rune{
	'O': '0',
	'I': '1',
	'S': '5',
	'B': '8',
	'G': '6',
	'Z': '2',
	'D': '0',
}

// correctDigits rewrites every correctable letter in text to its digit.
func correctDigits(text string) string {
	out := []rune(text)
	for i, c := range out {
		if d, ok := digitCorrections[c]; ok {
			out[i] = d
		}
	}
	return string(out)
}

// correctDigitSection applies digit corrections to text[start:end] only,
// leaving the rest untouched. Out-of-range bounds return text unchanged.
func correctDigitSection(text string, start, end int) string {
	if text == "" || start >= len(text) || end > len(text) || start >= end {
		return text
	}
	return text[:start] + correctDigits(text[start:end]) + text[end:]
}

// isDigits reports whether s is non-empty and all ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
