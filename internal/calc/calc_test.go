package calc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServing(t *testing.T) {
	tests := []struct {
		per      string
		expected Serving
		wantErr  bool
	}{
		{per: "100g", expected: Serving{Amount: 100, Unit: UnitGram}},
		{per: "100 g", expected: Serving{Amount: 100, Unit: UnitGram}},
		{per: "250ml", expected: Serving{Amount: 250, Unit: UnitMilliliter}},
		{per: "1 scoop (15g)", expected: Serving{Amount: 1, Unit: "scoop", Equivalent: 15}},
		{per: "2 slices (60 g)", expected: Serving{Amount: 2, Unit: "slice", Equivalent: 60}},
		{per: "1", expected: Serving{Amount: 1, Unit: UnitPiece}},
		{per: "1,5 Cup", expected: Serving{Amount: 1.5, Unit: UnitCup}},
		{per: "", wantErr: true},
		{per: "scoop", wantErr: true},
		{per: "0g", wantErr: true},
		{per: "1 scoop (15", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.per, func(t *testing.T) {
			serving, err := ParseServing(tt.per)
			if tt.wantErr {
				var parseFailure *ParseFailure
				require.ErrorAs(t, err, &parseFailure)
				assert.Equal(t, tt.per, parseFailure.Fragment)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, serving)
		})
	}
}

func TestCalculateMacros(t *testing.T) {
	whey := Ingredient{Name: "whey", Per: "1 scoop (15g)", Calories: 120, Protein: 24, Carbs: 3, Fat: 1.5}
	rice := Ingredient{Name: "rice", Per: "100g", Calories: 130, Protein: 2.6, Carbs: 28, Fat: 0.4}
	egg := Ingredient{Name: "egg", Per: "1", Calories: 78, Protein: 6.3, Carbs: 0.6, Fat: 5.3}

	tests := []struct {
		name       string
		ingredient Ingredient
		quantity   float64
		unit       string
		expected   Macros
	}{
		{name: "scoop by grams", ingredient: whey, quantity: 30, unit: "g", expected: Macros{Calories: 240, Protein: 48, Carbs: 6, Fat: 3}},
		{name: "scoop by count", ingredient: whey, quantity: 2, unit: "scoop", expected: Macros{Calories: 240, Protein: 48, Carbs: 6, Fat: 3}},
		{name: "scoop plural", ingredient: whey, quantity: 2, unit: "scoops", expected: Macros{Calories: 240, Protein: 48, Carbs: 6, Fat: 3}},
		{name: "grams", ingredient: rice, quantity: 150, unit: "g", expected: Macros{Calories: 195, Protein: 3.9, Carbs: 42, Fat: 0.6}},
		{name: "kilos", ingredient: rice, quantity: 0.2, unit: "kg", expected: Macros{Calories: 260, Protein: 5.2, Carbs: 56, Fat: 0.8}},
		{name: "pieces", ingredient: egg, quantity: 3, unit: "piece", expected: Macros{Calories: 234, Protein: 18.9, Carbs: 1.8, Fat: 15.9}},
		{name: "piece by grams", ingredient: egg, quantity: 100, unit: "g", expected: Macros{Calories: 156, Protein: 12.6, Carbs: 1.2, Fat: 10.6}},
		{name: "piece request on grams", ingredient: rice, quantity: 1, unit: "piece", expected: Macros{Calories: 65, Protein: 1.3, Carbs: 14, Fat: 0.2}},
		{name: "zero quantity", ingredient: rice, quantity: 0, unit: "g", expected: Macros{}},
		{name: "malformed serving", ingredient: Ingredient{Per: "a handful", Calories: 100}, quantity: 1, unit: "g", expected: Macros{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateMacros(tt.ingredient, tt.quantity, tt.unit))
		})
	}
}

func TestNormalize(t *testing.T) {
	whey := Normalize(Ingredient{Name: "whey", Per: "1 scoop (30g)", Calories: 120, Protein: 24, Carbs: 3, Fat: 1.5})
	assert.True(t, whey.Normalizable)
	assert.Equal(t, "100g", whey.Basis)
	assert.Equal(t, 400.0, whey.Calories)
	assert.Equal(t, 80.0, whey.Protein)
	assert.Equal(t, 10.0, whey.Carbs)
	assert.Equal(t, 5.0, whey.Fat)

	oil := Normalize(Ingredient{Name: "olive oil", Per: "1 tbsp", Calories: 120, Fat: 14})
	assert.True(t, oil.Normalizable)
	assert.Equal(t, 800.0, oil.Calories)
	assert.Equal(t, 93.3, oil.Fat)

	egg := Normalize(Ingredient{Name: "egg", Per: "1", Calories: 78, Protein: 6.3})
	assert.False(t, egg.Normalizable)
	assert.Equal(t, "1", egg.Basis)
	assert.Equal(t, 78.0, egg.Calories)

	n := CalculateNutrition(whey, 45)
	assert.Equal(t, Nutrition{Grams: 45, Calories: 180, Protein: 36, Carbs: 4.5, Fat: 2.3}, n)

	// non-normalizable values pass through
	n = CalculateNutrition(egg, 45)
	assert.Equal(t, 78, n.Calories)
	assert.Equal(t, 6.3, n.Protein)

	assert.Equal(t, Nutrition{}, CalculateNutrition(whey, 0))
}

func TestQuote(t *testing.T) {
	tests := []struct {
		duration, frequency int
		sessionPrice        int
		total               int
		override            bool
	}{
		{duration: 4, frequency: 3, sessionPrice: 42, total: 500, override: true},
		{duration: 12, frequency: 3, sessionPrice: 42, total: 1500, override: true},
		{duration: 4, frequency: 5, sessionPrice: 40, total: 800, override: true},
		{duration: 12, frequency: 5, sessionPrice: 40, total: 2400, override: true},
		{duration: 6, frequency: 3, sessionPrice: 42, total: 756},
		{duration: 1, frequency: 1, sessionPrice: 50, total: 50},
		{duration: 8, frequency: 2, sessionPrice: 45, total: 720},
		{duration: 4, frequency: 4, sessionPrice: 41, total: 656},
		{duration: 2, frequency: 7, sessionPrice: 40, total: 560},
		{duration: 0, frequency: 3},
		{duration: 4, frequency: 0},
		{duration: -1, frequency: -1},
	}

	for _, tt := range tests {
		quote := Quote(tt.duration, tt.frequency)
		assert.Equal(t, tt.sessionPrice, quote.SessionPrice, "%d x %d", tt.duration, tt.frequency)
		assert.Equal(t, tt.total, quote.TotalPrice, "%d x %d", tt.duration, tt.frequency)
		assert.Equal(t, tt.override, quote.PackageOverride, "%d x %d", tt.duration, tt.frequency)
	}
}

func TestParseIngredients(t *testing.T) {
	ingredients, err := ParseIngredients("200g Chicken Breast\n2 eggs; 1 tbsp olive oil, - 1,5 kg rice")
	require.NoError(t, err)
	assert.Equal(t, []ParsedIngredient{
		{Name: "chicken breast", Quantity: 200, Unit: UnitGram},
		{Name: "eggs", Quantity: 2, Unit: UnitPiece},
		{Name: "olive oil", Quantity: 1, Unit: UnitTablespoon},
		{Name: "rice", Quantity: 1.5, Unit: UnitKilogram},
	}, ingredients)

	_, err = ParseIngredients(" \n ; ,")
	assert.True(t, errors.Is(err, ErrNoIngredients))

	_, err = ParseIngredients("200g chicken, some salt")
	var parseFailure *ParseFailure
	require.ErrorAs(t, err, &parseFailure)
	assert.Equal(t, "some salt", parseFailure.Fragment)
	assert.False(t, errors.Is(err, ErrNoIngredients))

	_, err = ParseIngredients("200 g")
	require.ErrorAs(t, err, &parseFailure)
	assert.Equal(t, "200 g", parseFailure.Fragment)
}

func TestShoppingList(t *testing.T) {
	items := ShoppingList([]ParsedIngredient{
		{Name: "rice", Quantity: 1, Unit: UnitKilogram},
		{Name: "rice", Quantity: 200, Unit: UnitGram},
		{Name: "eggs", Quantity: 2, Unit: UnitPiece},
		{Name: "milk", Quantity: 1, Unit: UnitLiter},
		{Name: "eggs", Quantity: 4, Unit: UnitPiece},
		{Name: "milk", Quantity: 250, Unit: UnitMilliliter},
	})

	assert.Equal(t, []ShoppingItem{
		{Name: "eggs", Quantity: 6, Unit: UnitPiece},
		{Name: "milk", Quantity: 1250, Unit: UnitMilliliter},
		{Name: "rice", Quantity: 1200, Unit: UnitGram},
	}, items)

	assert.Empty(t, ShoppingList(nil))
}
