package calc

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ParseFailure is returned for text that looks like an ingredient or serving but cannot be read.
type ParseFailure struct {
	Fragment string
	Reason   string
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("cannot parse %q: %s", e.Fragment, e.Reason)
}

// Serving is the reference amount nutrition values are given for, e.g. "1 scoop (15g)".
type Serving struct {
	Amount float64 `json:"amount"`
	Unit   Unit    `json:"unit"`
	// Equivalent is the weight in grams (or ml) of the whole serving, 0 when not given.
	Equivalent float64 `json:"equivalent,omitempty"`
}

var servingRegex = regexp.MustCompile(`(?i)^\s*(\d+(?:[.,]\d+)?)\s*([a-z]+)?\s*(?:\(\s*(\d+(?:[.,]\d+)?)\s*(g|gr|gram|grams|ml)\s*\))?\s*$`)

func ParseServing(per string) (Serving, error) {
	m := servingRegex.FindStringSubmatch(per)
	if m == nil {
		return Serving{}, &ParseFailure{Fragment: per, Reason: "expected <amount>[unit] [(<grams>g)]"}
	}

	amount, err := parseNumber(m[1])
	if err != nil || amount <= 0 {
		return Serving{}, &ParseFailure{Fragment: per, Reason: "amount must be positive"}
	}

	unit, _ := ParseUnit(m[2])
	serving := Serving{Amount: amount, Unit: unit}
	if m[3] != "" {
		if serving.Equivalent, err = parseNumber(m[3]); err != nil || serving.Equivalent <= 0 {
			return Serving{}, &ParseFailure{Fragment: per, Reason: "gram equivalent must be positive"}
		}
	}
	return serving, nil
}

// Grams is the serving weight: the explicit equivalent, the measured amount,
// or 50 g per piece for counted servings.
func (s Serving) Grams() float64 {
	if s.Equivalent > 0 {
		return s.Equivalent
	}
	if g, ok := s.Unit.Grams(); ok {
		return s.Amount * g
	}
	return s.Amount * gramsPerPiece
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}
