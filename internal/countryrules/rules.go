package countryrules

import (
	"strings"

	"github.com/veridoc-tech/veridoc/internal/document"
	"github.com/veridoc-tech/veridoc/internal/probability"
)

// registry maps ISO 3166-1 alpha-3 codes to their country rule.
var registry = map[string]Rule{
	"PHL": philippinesRule,
	"ETH": ethiopiaRule,
	"KEN": kenyaRule,
	"NPL": nepalRule,
	"LKA": sriLankaRule,
	"IND": indiaRule,
	"UGA": ugandaRule,
	"UZB": uzbekistanRule,
	"RUS": russiaRule,
	"UKR": ukraineRule,
	"KGZ": kyrgyzstanRule,
	"SEN": senegalRule,
	"ESP": spainRule,
	"GBR": unitedKingdomRule,
	"ZWE": zimbabweRule,
	"LBN": lebanonRule,
	"MAR": moroccoRule,
	"PAK": pakistanRule,
	"IRQ": iraqRule,
	"MMR": myanmarRule,
}

// setNumber stores a validated document number, merging the validation
// confidence with whatever confidence extraction had already assigned.
func setNumber(r *document.Record, value string, validation float64) {
	r.Set(document.FieldNumber, value, probability.Combine(r.Confidence(document.FieldNumber), validation))
}

// truncateNumber caps the document number at nine characters. An unchanged
// number keeps its confidence; a corrected one is re-scored at
// max(0.7, original*0.8), or 0.7 when extraction had no signal.
func truncateNumber(r *document.Record, fixDigits bool) {
	number := r.Get(document.FieldNumber)
	processed := number
	if len(processed) > 9 {
		processed = processed[:9]
	}
	if fixDigits {
		processed = correctDigitSection(processed, 2, 9)
	}
	if processed == number {
		return
	}
	conf := r.Confidence(document.FieldNumber)
	final := 0.7
	if conf > 0 {
		final = max(0.7, conf*0.8)
	}
	r.Set(document.FieldNumber, processed, final)
}

// Philippine passport numbers are one letter followed by seven digits and a
// trailing series letter A, B, or C. The trailing letter is the usual OCR
// casualty: an 8 is a misread B and a 0 a misread C.
func philippinesRule(_ *Engine, r *document.Record) {
	number := strings.ToUpper(strings.TrimSpace(r.Get(document.FieldNumber)))
	value, validation := validatePhilippineNumber(number)
	setNumber(r, value, validation)

	r.Set(document.FieldMotherName, "", 1.0)
	r.Set(document.FieldFatherName, "", 1.0)
}

func validatePhilippineNumber(number string) (string, float64) {
	if number == "" {
		return "", 0.0
	}
	if len(number) < 9 {
		return number, 0.3
	}
	if len(number) > 9 {
		return number[:9], 0.5
	}

	number = correctDigitSection(number, 1, 8)

	switch number[8] {
	case 'A', 'B', 'C':
		return number, 1.0
	case '8':
		return number[:8] + "B", 0.8
	case '0':
		return number[:8] + "C", 0.8
	default:
		return number, 0.3
	}
}

// Ethiopian passport numbers are EQ or EP followed by seven digits.
func ethiopiaRule(_ *Engine, r *document.Record) {
	number := strings.ToUpper(strings.TrimSpace(r.Get(document.FieldNumber)))
	value, validation := validateEthiopianNumber(number)
	setNumber(r, value, validation)

	r.Set(document.FieldPlaceOfIssue, "ETHIOPIA", 1.0)
	r.Set(document.FieldCountryOfIssue, "ETHIOPIA", 1.0)
	r.Set(document.FieldMotherName, "", 1.0)
	r.Set(document.FieldFatherName, "", 1.0)
}

func validateEthiopianNumber(number string) (string, float64) {
	if number == "" {
		return "", 0.0
	}
	if len(number) < 9 {
		return number, 0.3
	}
	if !strings.HasPrefix(number, "EQ") && !strings.HasPrefix(number, "EP") {
		return number, 0.2
	}
	number = correctDigitSection(number, 2, 9)
	if !isDigits(number[2:]) {
		return number, 0.4
	}
	return number, 1.0
}

// Kenyan passport numbers are AK, BK, or CK followed by seven digits. The
// place of issue is one of two authority strings, matched fuzzily.
func kenyaRule(e *Engine, r *document.Record) {
	number := strings.ToUpper(strings.TrimSpace(r.Get(document.FieldNumber)))
	value, validation := validateKenyanNumber(number)
	setNumber(r, value, validation)

	place := r.Get(document.FieldPlaceOfIssue)
	switch {
	case place == "":
		r.Set(document.FieldPlaceOfIssue, "", 0.0)
	case e.scorer.Score(place, "GOVERNMENT OF KENYA") >= 90:
		r.Set(document.FieldPlaceOfIssue, "GOVERNMENT OF KENYA", 1.0)
	case e.scorer.Score(place, "REGISTRAR GENERAL HRE") >= 90:
		r.Set(document.FieldPlaceOfIssue, "REGISTRAR GENERAL HRE", 1.0)
	}

	r.Set(document.FieldCountryOfIssue, "KENYA", 1.0)
	r.Set(document.FieldMotherName, "", 1.0)
	r.Set(document.FieldFatherName, "", 1.0)
	r.Set(document.FieldMiddleName, "", 1.0)
}

func validateKenyanNumber(number string) (string, float64) {
	if number == "" {
		return "", 0.0
	}
	if len(number) < 9 {
		return number, 0.3
	}
	if len(number) > 9 {
		return number[:9], 0.5
	}
	if !strings.HasPrefix(number, "AK") && !strings.HasPrefix(number, "BK") && !strings.HasPrefix(number, "CK") {
		return number, 0.2
	}
	number = correctDigitSection(number, 2, 8)
	if !isDigits(number[2:]) {
		return number, 0.4
	}
	return number, 1.0
}

func nepalRule(e *Engine, r *document.Record) {
	place := r.Get(document.FieldPlaceOfIssue)
	if place != "" && e.scorer.Score(place, "MOFA DEPARTMENT OF PASSPORTS") >= 80 {
		r.Set(document.FieldPlaceOfIssue, "MOFA", 1.0)
		r.Set(document.FieldCountryOfIssue, "NEPAL", 1.0)
	}

	truncateNumber(r, true)

	r.Set(document.FieldMiddleName, "", 1.0)
	r.Set(document.FieldMotherName, "", 1.0)
	r.Set(document.FieldFatherName, "", 1.0)
}

func sriLankaRule(e *Engine, r *document.Record) {
	place := r.Get(document.FieldPlaceOfIssue)
	if place != "" && e.scorer.Score(place, "AUTHORITY COLOMBO") >= 90 {
		r.Set(document.FieldPlaceOfIssue, "COLOMBO", 1.0)
		r.Set(document.FieldCountryOfIssue, "SRI LANKA", 1.0)
	}

	truncateNumber(r, false)

	r.Set(document.FieldMiddleName, "", 1.0)
	r.Set(document.FieldMotherName, "", 1.0)
	r.Set(document.FieldFatherName, "", 1.0)
}

// Indian passports print the father's name where most documents print the
// surname, so the two fields swap roles: the extracted surname is really a
// middle name and the extracted father name is the surname. Confidences
// follow the values they belonged to.
func indiaRule(_ *Engine, r *document.Record) {
	truncateNumber(r, false)

	if mother := r.Get(document.FieldMotherName); mother != "" {
		first, _, _ := strings.Cut(mother, " ")
		r.SetValue(document.FieldMotherName, first)
	}

	surname := r.Get(document.FieldSurname)
	surnameConf := r.Confidence(document.FieldSurname)
	father := r.Get(document.FieldFatherName)
	fatherConf := r.Confidence(document.FieldFatherName)

	r.Set(document.FieldMiddleName, surname, surnameConf)
	r.Set(document.FieldSurname, father, fatherConf)
}

func ugandaRule(_ *Engine, r *document.Record) {
	r.Set(document.FieldMiddleName, "", 1.0)
	r.Set(document.FieldMotherName, "", 1.0)
	r.Set(document.FieldFatherName, "", 1.0)
}

func uzbekistanRule(_ *Engine, r *document.Record) {
	r.Set(document.FieldPlaceOfIssue, "UZBEKISTAN", 1.0)
	r.Set(document.FieldCountryOfIssue, "UZBEKISTAN", 1.0)
}

func russiaRule(_ *Engine, r *document.Record) {
	r.Set(document.FieldPlaceOfBirth, "RUSSIA", 1.0)
	r.Set(document.FieldPlaceOfIssue, "RUSSIA", 1.0)
	r.Set(document.FieldCountryOfIssue, "RUSSIA", 1.0)
}

func ukraineRule(_ *Engine, r *document.Record) {
	r.Set(document.FieldPlaceOfIssue, "UKRAINE", 1.0)
	r.Set(document.FieldCountryOfIssue, "UKRAINE", 1.0)
}

func kyrgyzstanRule(_ *Engine, r *document.Record) {
	r.Set(document.FieldPlaceOfIssue, "KYRGYZSTAN", 1.0)
	r.Set(document.FieldCountryOfIssue, "KYRGYZSTAN", 1.0)
}

func senegalRule(_ *Engine, r *document.Record) {
	r.Set(document.FieldPlaceOfIssue, "SENEGAL", 1.0)
	r.Set(document.FieldCountryOfIssue, "SENEGAL", 1.0)
}

func spainRule(_ *Engine, r *document.Record) {
	r.Set(document.FieldPlaceOfIssue, "SPAIN", 1.0)
	r.Set(document.FieldCountryOfIssue, "SPAIN", 1.0)
}

func unitedKingdomRule(_ *Engine, r *document.Record) {
	r.Set(document.FieldCountryOfIssue, "UNITED KINGDOM", 1.0)
}

func zimbabweRule(_ *Engine, r *document.Record) {
	r.Set(document.FieldPlaceOfIssue, "REGISTRAR GENERAL HRE", 1.0)
	r.Set(document.FieldCountryOfIssue, "ZIMBABWE", 1.0)
}

func lebanonRule(_ *Engine, r *document.Record) {
	r.Set(document.FieldPlaceOfIssue, "GDGS", 1.0)
	r.Set(document.FieldCountryOfIssue, "LEBANON", 1.0)
}

// Moroccan documents append "MAROC" to the place of birth and prefix the
// issuing city with a "DELIVRE ... DE" phrase.
func moroccoRule(_ *Engine, r *document.Record) {
	if pob := r.Get(document.FieldPlaceOfBirth); strings.HasSuffix(pob, "MAROC") {
		cut := len(pob) - len(" MAROC")
		if cut < 0 {
			cut = 0
		}
		r.SetValue(document.FieldPlaceOfBirth, pob[:cut])
	}

	if place := r.Get(document.FieldPlaceOfIssue); strings.Contains(place, "DE") {
		parts := strings.SplitN(place, "DE", 3)
		r.SetValue(document.FieldPlaceOfIssue, strings.TrimSpace(parts[1]))
	}
}

// Pakistani passports print the father's name in "SURNAME, GIVEN" order and
// use the same surname/father-name swap as Indian passports.
func pakistanRule(_ *Engine, r *document.Record) {
	if father := r.Get(document.FieldFatherName); strings.Contains(father, ", ") {
		last, given, _ := strings.Cut(father, ", ")
		r.SetValue(document.FieldFatherName, given+" "+last)
	}

	surname := r.Get(document.FieldSurname)
	surnameConf := r.Confidence(document.FieldSurname)
	father := r.Get(document.FieldFatherName)
	fatherConf := r.Confidence(document.FieldFatherName)

	r.Set(document.FieldMiddleName, surname, surnameConf)
	r.Set(document.FieldSurname, father, fatherConf)
}

// Iraqi documents repeat the surname at the end of the given-name field.
func iraqRule(_ *Engine, r *document.Record) {
	surname := r.Get(document.FieldSurname)
	name := r.Get(document.FieldName)
	if surname != "" && strings.HasSuffix(name, surname) {
		r.SetValue(document.FieldName, name[:len(name)-len(surname)])
	}
}

// Myanmar names are a single run of words with no surname of their own; the
// last word is treated as the surname and the rest as given names. The MRZ
// surname field carries the full name when available.
func myanmarRule(_ *Engine, r *document.Record) {
	full := r.Get(document.FieldMRZSurname)
	name := r.Get(document.FieldName)
	surname := r.Get(document.FieldSurname)

	r.Set(document.FieldMiddleName, "", 1.0)

	nameConf := r.Confidence(document.FieldName)
	surnameConf := r.Confidence(document.FieldSurname)

	source := full
	if source == "" {
		source = surname
	}
	if source == "" {
		source = name
	}

	words := strings.Fields(source)
	if len(words) > 1 {
		r.Set(document.FieldSurname, words[len(words)-1], surnameConf)
		r.Set(document.FieldName, strings.Join(words[:len(words)-1], " "), nameConf)
	}
}
