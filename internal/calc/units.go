package calc

import "strings"

type Unit string

const (
	UnitGram       Unit = "g"
	UnitKilogram   Unit = "kg"
	UnitMilliliter Unit = "ml"
	UnitLiter      Unit = "l"
	UnitTeaspoon   Unit = "tsp"
	UnitTablespoon Unit = "tbsp"
	UnitCup        Unit = "cup"
	UnitOunce      Unit = "oz"
	UnitPound      Unit = "lb"
	UnitPiece      Unit = "piece"
)

// grams (or ml, taken as equal) per unit
var unitGrams = map[Unit]float64{
	UnitGram:       1,
	UnitKilogram:   1000,
	UnitMilliliter: 1,
	UnitLiter:      1000,
	UnitTeaspoon:   5,
	UnitTablespoon: 15,
	UnitCup:        240,
	UnitOunce:      28.35,
	UnitPound:      453.59,
}

const gramsPerPiece = 50

var unitAliases = map[string]Unit{
	"g":           UnitGram,
	"gr":          UnitGram,
	"gram":        UnitGram,
	"grams":       UnitGram,
	"kg":          UnitKilogram,
	"kilo":        UnitKilogram,
	"ml":          UnitMilliliter,
	"milliliter":  UnitMilliliter,
	"milliliters": UnitMilliliter,
	"l":           UnitLiter,
	"liter":       UnitLiter,
	"liters":      UnitLiter,
	"tsp":         UnitTeaspoon,
	"teaspoon":    UnitTeaspoon,
	"teaspoons":   UnitTeaspoon,
	"tl":          UnitTeaspoon,
	"tbsp":        UnitTablespoon,
	"tablespoon":  UnitTablespoon,
	"tablespoons": UnitTablespoon,
	"el":          UnitTablespoon,
	"cup":         UnitCup,
	"cups":        UnitCup,
	"oz":          UnitOunce,
	"ounce":       UnitOunce,
	"ounces":      UnitOunce,
	"lb":          UnitPound,
	"lbs":         UnitPound,
	"pound":       UnitPound,
	"pounds":      UnitPound,
	"":            UnitPiece,
	"piece":       UnitPiece,
	"pieces":      UnitPiece,
	"pc":          UnitPiece,
	"pcs":         UnitPiece,
	"stuk":        UnitPiece,
	"stuks":       UnitPiece,
	"x":           UnitPiece,
}

// ParseUnit maps a unit spelling to its canonical unit. Unknown words are
// counted units of their own ("scoop", "slice"), with a trailing plural s dropped.
func ParseUnit(raw string) (Unit, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if u, ok := unitAliases[key]; ok {
		return u, true
	}
	return Unit(strings.TrimSuffix(key, "s")), false
}

// Grams returns how many grams one unit weighs; false for counted units.
func (u Unit) Grams() (float64, bool) {
	g, ok := unitGrams[u]
	return g, ok
}

func (u Unit) IsMeasured() bool {
	_, ok := unitGrams[u]
	return ok
}
