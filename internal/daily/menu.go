package daily

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

type MealType string

const (
	MealBreakfast      MealType = "breakfast"
	MealMorningSnack   MealType = "morningSnack"
	MealLunch          MealType = "lunch"
	MealAfternoonSnack MealType = "afternoonSnack"
	MealDinner         MealType = "dinner"
	MealEveningSnack   MealType = "eveningSnack"
)

// MealTypes in display order.
var MealTypes = []MealType{
	MealBreakfast,
	MealMorningSnack,
	MealLunch,
	MealAfternoonSnack,
	MealDinner,
	MealEveningSnack,
}

var mealLabels = map[MealType]string{
	MealBreakfast:      "Breakfast",
	MealMorningSnack:   "Morning Snack",
	MealLunch:          "Lunch",
	MealAfternoonSnack: "Afternoon Snack",
	MealDinner:         "Dinner",
	MealEveningSnack:   "Evening Snack",
}

var mealKeys = map[string]MealType{
	"breakfast":      MealBreakfast,
	"ontbijt":        MealBreakfast,
	"morningsnack":   MealMorningSnack,
	"ochtendsnack":   MealMorningSnack,
	"lunch":          MealLunch,
	"afternoonsnack": MealAfternoonSnack,
	"middagsnack":    MealAfternoonSnack,
	"dinner":         MealDinner,
	"diner":          MealDinner,
	"avondeten":      MealDinner,
	"eveningsnack":   MealEveningSnack,
	"avondsnack":     MealEveningSnack,
}

var weekdayKeys = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"zondag":    time.Sunday,
	"monday":    time.Monday,
	"maandag":   time.Monday,
	"tuesday":   time.Tuesday,
	"dinsdag":   time.Tuesday,
	"wednesday": time.Wednesday,
	"woensdag":  time.Wednesday,
	"thursday":  time.Thursday,
	"donderdag": time.Thursday,
	"friday":    time.Friday,
	"vrijdag":   time.Friday,
	"saturday":  time.Saturday,
	"zaterdag":  time.Saturday,
}

func (m MealType) String() string {
	return string(m)
}

func (m MealType) Label() string {
	return mealLabels[m]
}

func (m MealType) IsValid() bool {
	_, ok := mealLabels[m]
	return ok
}

// normalizeKey lower-cases and drops everything but letters and digits,
// so "Morning Snack", "morning_snack" and "morningSnack" compare equal.
func normalizeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

func ParseMealType(key string) (MealType, bool) {
	mt, ok := mealKeys[normalizeKey(key)]
	return mt, ok
}

func ParseWeekday(key string) (time.Weekday, bool) {
	wd, ok := weekdayKeys[normalizeKey(key)]
	return wd, ok
}

// DayMenu maps a meal slot to its free-text description.
type DayMenu map[MealType]string

// WeekMenu is indexed by time.Weekday.
type WeekMenu [7]DayMenu

// PlannedMeal is one tagged menu row.
type PlannedMeal struct {
	Weekday     time.Weekday `json:"weekday"`
	MealType    MealType     `json:"mealType"`
	Description string       `json:"description"`
}

// PlanMenu is the menu of the customer's active nutrition plan.
// A zero PlanID means the customer has no active plan.
type PlanMenu struct {
	PlanID uuid.UUID     `json:"planId"`
	Meals  []PlannedMeal `json:"meals"`
}

func (p *PlanMenu) HasPlan() bool {
	return p != nil && p.PlanID != uuid.Nil
}

// MealText returns the trimmed description of a slot, empty when not planned.
func (p *PlanMenu) MealText(weekday time.Weekday, mealType MealType) string {
	if p == nil {
		return ""
	}
	for _, m := range p.Meals {
		if m.Weekday == weekday && m.MealType == mealType {
			return strings.TrimSpace(m.Description)
		}
	}
	return ""
}

// PlannedMealTypes lists, in display order, the slots of weekday with non-empty text.
func (p *PlanMenu) PlannedMealTypes(weekday time.Weekday) []MealType {
	var planned []MealType
	for _, mt := range MealTypes {
		if p.MealText(weekday, mt) != "" {
			planned = append(planned, mt)
		}
	}
	return planned
}

// Rows flattens the menu into tagged rows ordered by weekday and meal slot.
func (w WeekMenu) Rows() []PlannedMeal {
	var rows []PlannedMeal
	for wd, dayMenu := range w {
		for _, mt := range MealTypes {
			text := strings.TrimSpace(dayMenu[mt])
			if text == "" {
				continue
			}
			rows = append(rows, PlannedMeal{
				Weekday:     time.Weekday(wd),
				MealType:    mt,
				Description: text,
			})
		}
	}
	return rows
}

var ErrNotAWeekMenu = errors.New("week menu must be a JSON object keyed by weekday")

// ParseWeekMenu reads a free-form JSON week menu.
// Weekday and meal keys may use any casing or separators, in English or Dutch.
// A slot value may be a string, an array of strings or objects, or an object with
// a description/text/meal/name field or an items array. Unknown keys are skipped.
// The menu may be wrapped in a top-level "weekMenu" or "menu" key.
func ParseWeekMenu(data []byte) (WeekMenu, error) {
	var menu WeekMenu

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return menu, fmt.Errorf("%w: %s", ErrNotAWeekMenu, err)
	}

	for key, raw := range top {
		switch normalizeKey(key) {
		case "weekmenu", "menu":
			return ParseWeekMenu(raw)
		}
	}

	for key, raw := range top {
		wd, ok := ParseWeekday(key)
		if !ok {
			continue
		}

		var slots map[string]json.RawMessage
		if err := json.Unmarshal(raw, &slots); err != nil {
			return menu, fmt.Errorf("weekday %q: expected an object of meals: %w", key, err)
		}

		if menu[wd] == nil {
			menu[wd] = DayMenu{}
		}
		for slotKey, slotRaw := range slots {
			mt, ok := ParseMealType(slotKey)
			if !ok {
				continue
			}
			text := slotText(slotRaw)
			if text == "" {
				continue
			}
			menu[wd][mt] = text
		}
	}

	return menu, nil
}

var slotTextFields = []string{"description", "text", "meal", "name"}

func slotText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		var parts []string
		for _, el := range list {
			if t := slotText(el); t != "" {
				parts = append(parts, t)
			}
		}
		return strings.Join(parts, ", ")
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}

	normalized := make(map[string]json.RawMessage, len(obj))
	for k, v := range obj {
		normalized[normalizeKey(k)] = v
	}

	for _, field := range slotTextFields {
		if v, ok := normalized[field]; ok {
			if t := slotText(v); t != "" {
				return t
			}
		}
	}
	if v, ok := normalized["items"]; ok {
		return slotText(v)
	}
	return ""
}
