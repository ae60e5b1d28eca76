package calc

import (
	"errors"
	"regexp"
	"strings"
)

var ErrNoIngredients = errors.New("no ingredients found")

type ParsedIngredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     Unit    `json:"unit"`
}

var (
	ingredientSeparator = regexp.MustCompile(`[\n;]+|,(?:\s+|$)`)
	ingredientRegex     = regexp.MustCompile(`(?i)^(\d+(?:[.,]\d+)?)\s*(.*)$`)
)

// ParseIngredients reads lines like "200g chicken breast", "2 eggs" or "1 tbsp olive oil",
// separated by newlines, semicolons or a comma followed by a space ("1,5 kg" stays one line). Blank text gives ErrNoIngredients,
// the first unreadable line gives a *ParseFailure.
func ParseIngredients(text string) ([]ParsedIngredient, error) {
	var ingredients []ParsedIngredient
	for _, fragment := range ingredientSeparator.Split(text, -1) {
		fragment = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(fragment), "-*•"))
		if fragment == "" {
			continue
		}
		ingredient, err := parseIngredient(fragment)
		if err != nil {
			return nil, err
		}
		ingredients = append(ingredients, ingredient)
	}

	if len(ingredients) == 0 {
		return nil, ErrNoIngredients
	}
	return ingredients, nil
}

func parseIngredient(fragment string) (ParsedIngredient, error) {
	m := ingredientRegex.FindStringSubmatch(fragment)
	if m == nil {
		return ParsedIngredient{}, &ParseFailure{Fragment: fragment, Reason: "missing leading quantity"}
	}

	quantity, err := parseNumber(m[1])
	if err != nil || quantity <= 0 {
		return ParsedIngredient{}, &ParseFailure{Fragment: fragment, Reason: "quantity must be positive"}
	}

	words := strings.Fields(m[2])
	unit := UnitPiece
	if len(words) > 0 {
		if u, known := ParseUnit(words[0]); known {
			unit = u
			words = words[1:]
		}
	}

	name := strings.ToLower(strings.Join(words, " "))
	if name == "" {
		return ParsedIngredient{}, &ParseFailure{Fragment: fragment, Reason: "missing ingredient name"}
	}

	return ParsedIngredient{
		Name:     name,
		Quantity: quantity,
		Unit:     unit,
	}, nil
}
