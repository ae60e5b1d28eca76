package daily

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const tempItemPrefix = "temp-"

var fragmentSeparator = regexp.MustCompile(`(?i),|\b(?:en|and)\b`)

// SplitMealFragments splits a meal description on commas and the whole words "en" / "and".
func SplitMealFragments(text string) []string {
	var fragments []string
	for _, part := range fragmentSeparator.Split(text, -1) {
		if part = strings.TrimSpace(part); part != "" {
			fragments = append(fragments, part)
		}
	}
	return fragments
}

func TempItemID(mealType MealType, order int) string {
	return fmt.Sprintf("%s%s-%d", tempItemPrefix, mealType, order)
}

// ParseTempItemID recovers the meal slot and fragment order from a placeholder id.
func ParseTempItemID(id string) (MealType, int, bool) {
	rest, ok := strings.CutPrefix(id, tempItemPrefix)
	if !ok {
		return "", 0, false
	}
	idx := strings.LastIndex(rest, "-")
	if idx <= 0 {
		return "", 0, false
	}
	mealType := MealType(rest[:idx])
	order, err := strconv.Atoi(rest[idx+1:])
	if err != nil || order < 0 || !mealType.IsValid() {
		return "", 0, false
	}
	return mealType, order, true
}

// reconcileItems lines up the planned fragments with the persisted items.
// Every fragment first takes the item stored with its own order. A fragment left without one
// takes an unclaimed item with exactly the same text, else a placeholder.
// Without fragments the persisted items are returned as they are.
func reconcileItems(mealType MealType, fragments []string, persisted []MealItem) []MealItemView {
	if len(fragments) == 0 {
		views := make([]MealItemView, 0, len(persisted))
		for _, item := range persisted {
			views = append(views, MealItemView{
				ID:        item.ID.String(),
				Text:      item.Text,
				Order:     item.Order,
				Completed: item.Completed,
			})
		}
		return views
	}

	used := make(map[int]bool, len(persisted))
	matched := make([]int, len(fragments))
	for order := range fragments {
		matched[order] = -1
		for i, item := range persisted {
			if item.Order == order && !used[i] {
				matched[order] = i
				used[i] = true
				break
			}
		}
	}
	for order, fragment := range fragments {
		if matched[order] >= 0 {
			continue
		}
		if idx, ok := findItemByText(persisted, used, fragment); ok {
			matched[order] = idx
			used[idx] = true
		}
	}

	views := make([]MealItemView, 0, len(fragments))
	for order, fragment := range fragments {
		idx := matched[order]
		if idx < 0 {
			views = append(views, MealItemView{
				ID:    TempItemID(mealType, order),
				Text:  fragment,
				Order: order,
			})
			continue
		}
		views = append(views, MealItemView{
			ID:        persisted[idx].ID.String(),
			Text:      fragment,
			Order:     order,
			Completed: persisted[idx].Completed,
		})
	}
	return views
}

func findItemByText(items []MealItem, used map[int]bool, text string) (int, bool) {
	for i, item := range items {
		if !used[i] && strings.TrimSpace(item.Text) == text {
			return i, true
		}
	}
	return 0, false
}

func allItemsCompleted(items []MealItemView) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !item.Completed {
			return false
		}
	}
	return true
}
