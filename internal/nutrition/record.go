package nutrition

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NotAvailable is the sentinel written when the source lacks a value.
const NotAvailable = "N/A"

// Origin tags where a populated record came from.
type Origin string

const (
	OriginLocal         Origin = "local"
	OriginOpenFoodFacts Origin = "OpenFoodFacts"
)

// ErrorKind classifies an error record.
type ErrorKind string

const (
	KindNotFound      ErrorKind = "not_found"
	KindRemoteFailure ErrorKind = "remote_failure"
)

// Amount is a per-100g quantity. Contributors submit numbers or free text, so
// both survive a round trip; a missing value renders as "N/A".
type Amount struct {
	value float64
	text  string
	known bool
}

// Number returns an Amount holding a numeric value.
func Number(v float64) Amount { return Amount{value: v, known: true} }

// Text returns an Amount holding a textual value such as "0.5 g".
func Text(s string) Amount {
	s = strings.TrimSpace(s)
	if s == "" || s == NotAvailable {
		return Amount{}
	}
	return Amount{text: s, known: true}
}

// Missing returns the "N/A" amount.
func Missing() Amount { return Amount{} }

// Known reports whether the source supplied a value.
func (a Amount) Known() bool { return a.known }

// Float returns the numeric value, parsing textual amounts when possible.
func (a Amount) Float() (float64, bool) {
	if !a.known {
		return 0, false
	}
	if a.text == "" {
		return a.value, true
	}
	v, err := strconv.ParseFloat(a.text, 64)
	return v, err == nil
}

func (a Amount) String() string {
	switch {
	case !a.known:
		return NotAvailable
	case a.text != "":
		return a.text
	default:
		return strconv.FormatFloat(a.value, 'f', -1, 64)
	}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	switch {
	case !a.known:
		return json.Marshal(NotAvailable)
	case a.text != "":
		return json.Marshal(a.text)
	default:
		return json.Marshal(a.value)
	}
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	parsed, err := ParseAmount(data)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAmount decodes a raw JSON nutriment value. Absent and null values map
// to "N/A".
func ParseAmount(raw json.RawMessage) (Amount, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Missing(), nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return Amount{}, fmt.Errorf("decode amount: %w", err)
		}
		return Text(s), nil
	default:
		var v float64
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return Amount{}, fmt.Errorf("decode amount: %w", err)
		}
		return Number(v), nil
	}
}

// Facts are the four per-100g values a record carries.
type Facts struct {
	Calories Amount
	Fat      Amount
	Carbs    Amount
	Protein  Amount
}

// Record is either a populated nutrition record or an error record, never
// both. Use IsError to tell them apart.
type Record struct {
	Facts
	Source      Origin
	ProductName string

	errMsg  string
	errKind ErrorKind
}

// Populated builds a populated record.
func Populated(facts Facts, source Origin, productName string) Record {
	return Record{Facts: facts, Source: source, ProductName: productName}
}

// Failure builds an error record.
func Failure(kind ErrorKind, message string) Record {
	if kind == "" {
		kind = KindRemoteFailure
	}
	return Record{errMsg: message, errKind: kind}
}

// IsError reports whether r is an error record.
func (r Record) IsError() bool { return r.errMsg != "" }

// Reason returns the human-readable reason of an error record.
func (r Record) Reason() string { return r.errMsg }

// Kind returns the error classification, empty for populated records.
func (r Record) Kind() ErrorKind { return r.errKind }

// WithSource returns a copy of r tagged with source.
func (r Record) WithSource(source Origin) Record {
	if r.IsError() {
		return r
	}
	r.Source = source
	return r
}

type populatedJSON struct {
	Calories          Amount `json:"calories"`
	Fat               Amount `json:"fat"`
	Carbs             Amount `json:"carbs"`
	Protein           Amount `json:"protein"`
	Source            Origin `json:"source"`
	ActualProductName string `json:"actual_product_name"`
}

type errorJSON struct {
	Error string `json:"error"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	if r.IsError() {
		return json.Marshal(errorJSON{Error: r.errMsg})
	}
	return json.Marshal(populatedJSON{
		Calories:          r.Calories,
		Fat:               r.Fat,
		Carbs:             r.Carbs,
		Protein:           r.Protein,
		Source:            r.Source,
		ActualProductName: r.ProductName,
	})
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if raw, ok := probe["error"]; ok {
		var msg string
		if err := json.Unmarshal(raw, &msg); err != nil {
			return fmt.Errorf("decode error record: %w", err)
		}
		*r = Failure(KindRemoteFailure, msg)
		return nil
	}

	out := Record{}
	fields := []struct {
		key string
		dst *Amount
	}{
		{"calories", &out.Calories},
		{"fat", &out.Fat},
		{"carbs", &out.Carbs},
		{"protein", &out.Protein},
	}
	for _, f := range fields {
		amount, err := ParseAmount(probe[f.key])
		if err != nil {
			return fmt.Errorf("%s: %w", f.key, err)
		}
		*f.dst = amount
	}
	if raw, ok := probe["source"]; ok {
		if err := json.Unmarshal(raw, &out.Source); err != nil {
			return fmt.Errorf("source: %w", err)
		}
	}
	if raw, ok := probe["actual_product_name"]; ok {
		if err := json.Unmarshal(raw, &out.ProductName); err != nil {
			return fmt.Errorf("actual_product_name: %w", err)
		}
	}
	*r = out
	return nil
}
