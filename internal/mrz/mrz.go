// Package mrz implements the machine-readable-zone cross-checks that run
// between field resolution and normalization: ICAO check-digit validation,
// document-number recovery from line 2, MRZ/visual name reconciliation,
// and gender backfill.
package mrz

import (
	"regexp"
	"strings"

	"github.com/veridoc-tech/veridoc/internal/document"
	"github.com/veridoc-tech/veridoc/internal/normalize"
	"github.com/veridoc-tech/veridoc/internal/probability"
)

var fillerBeforeLetter = regexp.MustCompile(`<<[A-Z]`)

// countries whose passports legitimately repeat the name-separator filler,
// so the longer-name exception applies during reconciliation.
var longNameCountries = map[string]struct{}{
	"LKA": {}, "IND": {}, "MDG": {},
}

// ValidLineOne reports whether line 1 looks structurally sound: at most one
// "<<" filler run directly followed by a letter (the surname/given-names
// separator).
func ValidLineOne(line string) bool {
	return len(fillerBeforeLetter.FindAllString(line, -1)) <= 1
}

// CheckDigit computes the ICAO 9303 check digit for s using the 7-3-1
// weight cycle. '<' counts as zero, letters as A=10..Z=35.
func CheckDigit(s string) int {
	weights := [3]int{7, 3, 1}
	total := 0
	for i, r := range s {
		var v int
		switch {
		case r >= '0' && r <= '9':
			v = int(r - '0')
		case r == '<':
			v = 0
		default:
			v = int(r-'A') + 10
		}
		total += v * weights[i%3]
	}
	return total % 10
}

// RecoverNumber validates the document number encoded in MRZ line 2 and,
// when the check digit holds and the value disagrees with the resolved
// number, adopts the MRZ value. The rewritten field's confidence is the
// conservative combination of the prior number confidence and the line's.
func RecoverNumber(record *document.Record) {
	line2 := strings.TrimSpace(record.Get(document.FieldMRZLine2))
	if len(line2) < 10 {
		return
	}

	number := strings.TrimSpace(strings.ReplaceAll(line2[:9], "<", ""))
	check := line2[9]
	if number == "" || check < '0' || check > '9' {
		return
	}

	padded := number + strings.Repeat("<", 9-len(number))
	if CheckDigit(padded) != int(check-'0') {
		return
	}
	if number == record.Get(document.FieldNumber) {
		return
	}

	conf := probability.Combine(
		record.Confidence(document.FieldNumber),
		record.Confidence(document.FieldMRZLine2),
	)
	record.Set(document.FieldNumber, number, conf)
}

// ReconcileNames compares the MRZ surname/given names against the visual
// values and, when they disagree, adopts the candidate from the more
// confident zone. The reconciled field carries the conservative minimum of
// the two confidences: a disagreement is a review signal either way.
// Uzbek passports are skipped; their MRZ name layout is unreliable.
func ReconcileNames(record *document.Record, country string) {
	if country == "UZB" {
		return
	}
	if !ValidLineOne(record.Get(document.FieldMRZLine1)) {
		return
	}

	mrzSurname := record.Get(document.FieldMRZSurname)
	mrzName := record.Get(document.FieldMRZName)
	if mrzSurname == "" && mrzName == "" {
		return
	}

	_, longNames := longNameCountries[country]
	reconcile(record, document.FieldSurname, document.FieldMRZSurname, longNames)
	reconcile(record, document.FieldName, document.FieldMRZName, longNames)
}

// reconcile adopts the MRZ candidate for one name field when the squashed
// forms disagree and the MRZ zone is at least as confident as the visual
// one. With longNames set, the MRZ value must also be at least as long as
// the visual value, since those layouts truncate visual names.
func reconcile(record *document.Record, field, mrzField string, longNames bool) {
	mrzValue := record.Get(mrzField)
	if mrzValue == "" {
		return
	}

	cleanMRZ := squash(mrzValue)
	cleanVisual := squash(record.Get(field))
	if cleanMRZ == cleanVisual {
		return
	}
	if longNames && len(cleanMRZ) < len(cleanVisual) {
		return
	}

	fieldConf := record.Confidence(field)
	mrzConf := record.Confidence(mrzField)
	conf := probability.Combine(fieldConf, mrzConf)
	if mrzConf >= fieldConf {
		record.Set(field, mrzValue, conf)
	} else {
		record.Set(field, record.Get(field), conf)
	}
}

// StripCountryPrefix removes a leading country code that OCR merged into
// the surname, unless the MRZ legitimately starts with the doubled code.
func StripCountryPrefix(record *document.Record, country string) {
	if len(country) != 3 {
		return
	}
	surname := record.Get(document.FieldSurname)
	if !strings.HasPrefix(surname, country) {
		return
	}
	if strings.Contains(record.Get(document.FieldMRZLine1), country+country) {
		return
	}
	record.SetValue(document.FieldSurname, strings.TrimSpace(surname[3:]))
}

// BackfillGender copies a definite MRZ gender (M or F) over the visual
// gender field, carrying the MRZ confidence when it is the stronger signal.
func BackfillGender(record *document.Record) {
	g := strings.TrimSpace(record.Get(document.FieldMRZGender))
	if g != "M" && g != "F" {
		return
	}
	conf := record.Confidence(document.FieldGender)
	if mc := record.Confidence(document.FieldMRZGender); mc > conf {
		conf = mc
	}
	record.Set(document.FieldGender, g, conf)
}

// squash reduces a name to its comparable core: cleaned, uppercased, with
// all spaces removed.
func squash(s string) string {
	return strings.ReplaceAll(normalize.CleanString(s), " ", "")
}
