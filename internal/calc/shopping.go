package calc

import (
	"sort"
)

type ShoppingItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     Unit    `json:"unit"`
}

// ShoppingList sums quantities per (name, unit). Measured units are summed in grams
// or milliliters, so "1 kg rice" and "200 g rice" become one line.
func ShoppingList(ingredients []ParsedIngredient) []ShoppingItem {
	type key struct {
		name string
		unit Unit
	}

	totals := map[key]float64{}
	for _, ing := range ingredients {
		unit, quantity := baseUnit(ing.Unit, ing.Quantity)
		totals[key{name: ing.Name, unit: unit}] += quantity
	}

	items := make([]ShoppingItem, 0, len(totals))
	for k, quantity := range totals {
		items = append(items, ShoppingItem{
			Name:     k.name,
			Quantity: round1(quantity),
			Unit:     k.unit,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].Unit < items[j].Unit
	})
	return items
}

func baseUnit(unit Unit, quantity float64) (Unit, float64) {
	switch unit {
	case UnitMilliliter, UnitLiter:
		g, _ := unit.Grams()
		return UnitMilliliter, quantity * g
	default:
		if g, ok := unit.Grams(); ok {
			return UnitGram, quantity * g
		}
		return unit, quantity
	}
}
