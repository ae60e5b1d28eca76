package calc

import "math"

type Ingredient struct {
	Name     string  `json:"name"`
	Per      string  `json:"per" validate:"required"`
	Calories float64 `json:"calories" validate:"gte=0"`
	Protein  float64 `json:"protein" validate:"gte=0"`
	Carbs    float64 `json:"carbs" validate:"gte=0"`
	Fat      float64 `json:"fat" validate:"gte=0"`
}

type Macros struct {
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// CalculateMacros scales the ingredient values to quantity of unit.
// Malformed servings, non-positive quantities and unconvertible units give zero macros.
func CalculateMacros(ingredient Ingredient, quantity float64, unit string) Macros {
	multiplier := servingMultiplier(ingredient.Per, quantity, unit)
	if multiplier <= 0 {
		return Macros{}
	}
	return Macros{
		Calories: int(math.Round(ingredient.Calories * multiplier)),
		Protein:  round1(ingredient.Protein * multiplier),
		Carbs:    round1(ingredient.Carbs * multiplier),
		Fat:      round1(ingredient.Fat * multiplier),
	}
}

func servingMultiplier(per string, quantity float64, unit string) float64 {
	if quantity <= 0 || math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return 0
	}
	serving, err := ParseServing(per)
	if err != nil {
		return 0
	}

	requested, _ := ParseUnit(unit)
	if requested == serving.Unit {
		return quantity / serving.Amount
	}

	if gramsPerUnit, ok := requested.Grams(); ok {
		// mass or volume request: compare weights
		return quantity * gramsPerUnit / serving.Grams()
	}

	if !serving.Unit.IsMeasured() {
		// two counted units, treated as one count each
		return quantity / serving.Amount
	}

	// counted request against a measured serving
	return quantity * gramsPerPiece / serving.Grams()
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
