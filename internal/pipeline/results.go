package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/veridoc-tech/veridoc/internal/document"
)

// ToJSON serializes a single Result to pretty JSON.
func ToJSON(res *Result) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToJSONBatch serializes multiple Result entries to pretty JSON.
func ToJSONBatch(results []*Result) (string, error) {
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ValidateResult performs simple consistency checks on a result.
func ValidateResult(res *Result) error {
	if res == nil {
		return errors.New("nil result")
	}
	if len(res.Fields) == 0 {
		return errors.New("result has no fields")
	}
	for field, conf := range res.Confidences {
		if conf < 0 || conf > 1 {
			return fmt.Errorf("field %q confidence %v out of range", field, conf)
		}
	}
	for field := range res.Fields {
		if _, ok := res.Confidences[field]; !ok {
			return fmt.Errorf("field %q has no confidence entry", field)
		}
	}
	return nil
}

// FieldRows flattens a result into ordered (field, value, confidence) rows
// for tabular export. Fields outside the universal set are skipped.
func FieldRows(res *Result) [][3]string {
	if res == nil {
		return nil
	}
	rows := make([][3]string, 0, len(document.Fields))
	for _, field := range document.Fields {
		if _, ok := res.Fields[field]; !ok {
			continue
		}
		rows = append(rows, [3]string{
			field,
			res.Fields[field],
			fmt.Sprintf("%.3f", res.Confidence(field)),
		})
	}
	return rows
}
