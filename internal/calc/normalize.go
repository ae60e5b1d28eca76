package calc

import "math"

// NormalizedIngredient holds nutrition values per 100 g (or ml).
// Counted ingredients without a weight cannot be normalized: their values stay per serving.
type NormalizedIngredient struct {
	Name         string  `json:"name"`
	Basis        string  `json:"basis"`
	Normalizable bool    `json:"normalizable"`
	Calories     float64 `json:"calories"`
	Protein      float64 `json:"protein"`
	Carbs        float64 `json:"carbs"`
	Fat          float64 `json:"fat"`
}

type Nutrition struct {
	Grams    float64 `json:"grams"`
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

const basis100g = "100g"

func Normalize(ingredient Ingredient) NormalizedIngredient {
	passThrough := NormalizedIngredient{
		Name:     ingredient.Name,
		Basis:    ingredient.Per,
		Calories: ingredient.Calories,
		Protein:  ingredient.Protein,
		Carbs:    ingredient.Carbs,
		Fat:      ingredient.Fat,
	}

	serving, err := ParseServing(ingredient.Per)
	if err != nil {
		return passThrough
	}

	var grams float64
	switch {
	case serving.Equivalent > 0:
		grams = serving.Equivalent
	case serving.Unit.IsMeasured():
		g, _ := serving.Unit.Grams()
		grams = serving.Amount * g
	default:
		return passThrough
	}

	factor := 100 / grams
	return NormalizedIngredient{
		Name:         ingredient.Name,
		Basis:        basis100g,
		Normalizable: true,
		Calories:     round1(ingredient.Calories * factor),
		Protein:      round1(ingredient.Protein * factor),
		Carbs:        round1(ingredient.Carbs * factor),
		Fat:          round1(ingredient.Fat * factor),
	}
}

// CalculateNutrition scales per-100g values to grams. Non-normalizable values are returned unscaled.
func CalculateNutrition(normalized NormalizedIngredient, grams float64) Nutrition {
	if !normalized.Normalizable {
		return Nutrition{
			Grams:    grams,
			Calories: int(math.Round(normalized.Calories)),
			Protein:  round1(normalized.Protein),
			Carbs:    round1(normalized.Carbs),
			Fat:      round1(normalized.Fat),
		}
	}
	if grams <= 0 {
		return Nutrition{}
	}

	factor := grams / 100
	return Nutrition{
		Grams:    grams,
		Calories: int(math.Round(normalized.Calories * factor)),
		Protein:  round1(normalized.Protein * factor),
		Carbs:    round1(normalized.Carbs * factor),
		Fat:      round1(normalized.Fat * factor),
	}
}
