package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/veridoc-tech/veridoc/internal/document"
)

// DateLayout is the canonical output format for all date fields.
const DateLayout = "02/01/2006"

// DateFields lists the fields the date pass rewrites.
var DateFields = []string{
	document.FieldBirthDate,
	document.FieldIssueDate,
	document.FieldExpiryDate,
}

// expiryHorizonYears bounds how far in the future an expiry date may lie
// before the alternate century is tried.
const expiryHorizonYears = 25

var monthNames = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// StandardizeDate converts a free-form passport date to DateLayout.
// field selects the century policy (birth/issue pivot vs. expiry horizon).
// The second return is false when the input cannot be parsed; callers keep
// the original value and halve its confidence in that case.
func StandardizeDate(raw, field string, now time.Time) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	t, ok := parseDate(s, field, now)
	if !ok {
		return "", false
	}
	t = adjustCentury(t, field, now)
	return t.Format(DateLayout), true
}

// parseDate recognizes the written forms seen on passports: MRZ-style
// YYMMDD digits, numeric day-first dates with /-. separators, ISO dates,
// and day/month-name/year including the bilingual month variant
// ("18 MAR MARS 1974").
func parseDate(s, field string, now time.Time) (time.Time, bool) {
	cleaned := strings.ToUpper(CleanString(s))
	tokens := strings.Fields(cleaned)

	switch len(tokens) {
	case 1:
		return parseDigits(tokens[0], field, now)
	case 3:
		// ISO order when the leading token is a four-digit year.
		if len(tokens[0]) == 4 && isDigits(tokens[0]) {
			return parseDayMonthYear(tokens[2], tokens[1], tokens[0], field, now)
		}
		return parseDayMonthYear(tokens[0], tokens[1], tokens[2], field, now)
	case 4:
		// Bilingual month: try the first month token, then the second.
		if t, ok := parseDayMonthYear(tokens[0], tokens[1], tokens[3], field, now); ok {
			return t, true
		}
		return parseDayMonthYear(tokens[0], tokens[2], tokens[3], field, now)
	default:
		return time.Time{}, false
	}
}

// parseDigits handles all-numeric forms: YYMMDD (MRZ) and DDMMYYYY, with
// YYYYMMDD as a fallback.
func parseDigits(s, field string, now time.Time) (time.Time, bool) {
	if !isDigits(s) {
		return time.Time{}, false
	}
	switch len(s) {
	case 6:
		yy, _ := strconv.Atoi(s[0:2])
		mm, _ := strconv.Atoi(s[2:4])
		dd, _ := strconv.Atoi(s[4:6])
		return makeDate(expandYear(yy, field, now), mm, dd)
	case 8:
		dd, _ := strconv.Atoi(s[0:2])
		mm, _ := strconv.Atoi(s[2:4])
		yyyy, _ := strconv.Atoi(s[4:8])
		if t, ok := makeDate(yyyy, mm, dd); ok {
			return t, true
		}
		yyyy, _ = strconv.Atoi(s[0:4])
		mm, _ = strconv.Atoi(s[4:6])
		dd, _ = strconv.Atoi(s[6:8])
		return makeDate(yyyy, mm, dd)
	default:
		return time.Time{}, false
	}
}

// parseDayMonthYear handles day-first dates where the month is numeric or a
// written name ("18 03 1974", "18 MAR 74", "18 MARCH 1974").
func parseDayMonthYear(dayTok, monTok, yearTok, field string, now time.Time) (time.Time, bool) {
	dd, err := strconv.Atoi(dayTok)
	if err != nil {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(yearTok)
	if err != nil {
		return time.Time{}, false
	}
	year = expandYear(year, field, now)

	if mm, err := strconv.Atoi(monTok); err == nil {
		return makeDate(year, mm, dd)
	}
	if len(monTok) >= 3 {
		if month, ok := monthNames[monTok[:3]]; ok {
			return makeDate(year, int(month), dd)
		}
	}
	return time.Time{}, false
}

// expandYear applies the century-expansion policy for two-digit years.
// Expiry and issue dates start in the 2000s and are corrected afterwards by
// adjustCentury; birth dates use the pivot rule directly.
func expandYear(yy int, field string, now time.Time) int {
	if yy > 1000 {
		return yy
	}
	if field == document.FieldExpiryDate || field == document.FieldIssueDate {
		return 2000 + yy
	}
	pivot := now.Year() % 100
	if yy > pivot {
		return 1900 + yy
	}
	return 2000 + yy
}

// adjustCentury applies field-specific sanity rules: birth and issue dates
// cannot lie in the future, and expiry dates must fall within the horizon.
func adjustCentury(t time.Time, field string, now time.Time) time.Time {
	switch field {
	case document.FieldBirthDate, document.FieldIssueDate:
		if t.After(now) {
			t = t.AddDate(-100, 0, 0)
		}
	case document.FieldExpiryDate:
		horizon := now.AddDate(expiryHorizonYears, 0, 0)
		for i := 0; t.Before(now) && i < 5; i++ {
			t = t.AddDate(100, 0, 0)
		}
		for i := 0; t.After(horizon) && i < 5; i++ {
			t = t.AddDate(-100, 0, 0)
		}
	}
	return t
}

// makeDate validates the components strictly, rejecting overflow dates like
// 31/02 that time.Date would silently normalize.
func makeDate(year, month, day int) (time.Time, bool) {
	if year < 1000 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
