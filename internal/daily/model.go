package daily

import (
	"github.com/google/uuid"
)

// Days are always YYYY-MM-DD strings of a day normalized with StartOfDay.

type Task struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Title      string
	Type       string
	Order      int
	IsActive   bool
}

type TaskCompletion struct {
	TaskID     uuid.UUID
	CustomerID uuid.UUID
	Day        string
	Completed  bool
	Value      *float64
	Notes      *string
}

type NutritionDay struct {
	CustomerID uuid.UUID
	Day        string
	Followed   bool
	Notes      *string
}

type WaterDay struct {
	CustomerID uuid.UUID
	Day        string
	Amount     float64
	Target     float64
}

func (w WaterDay) TargetMet() bool {
	return w.Target > 0 && w.Amount >= w.Target
}

type MealCompletion struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Day        string
	MealType   MealType
	Completed  bool
	Items      []MealItem
}

type MealItem struct {
	ID               uuid.UUID
	MealCompletionID uuid.UUID
	Order            int
	Text             string
	Completed        bool
}

type TaskView struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	Order     int       `json:"order"`
	IsActive  bool      `json:"isActive"`
	Completed bool      `json:"completed"`
	Value     *float64  `json:"value"`
	Notes     *string   `json:"notes"`
}

type NutritionView struct {
	Followed bool    `json:"followed"`
	Notes    *string `json:"notes"`
}

type WaterView struct {
	Amount float64 `json:"amount"`
	Target float64 `json:"target"`
}

type MealView struct {
	Type      MealType       `json:"type"`
	Label     string         `json:"label"`
	Text      string         `json:"text"`
	Completed bool           `json:"completed"`
	Items     []MealItemView `json:"items"`
}

type MealItemView struct {
	// ID is the persisted item id, or a temp-<mealType>-<order> placeholder
	ID        string `json:"id"`
	Text      string `json:"text"`
	Order     int    `json:"order"`
	Completed bool   `json:"completed"`
}

type WeeklyStats struct {
	NutritionDays     int `json:"nutritionDays"`
	WaterDays         int `json:"waterDays"`
	TaskCompletions   int `json:"taskCompletions"`
	TotalTasks        int `json:"totalTasks"`
	TrainingSessions  int `json:"trainingSessions"`
	TrainingFrequency int `json:"trainingFrequency"`
	ConsistencyScore  int `json:"consistencyScore"`
}

type CalendarDay struct {
	Date      string `json:"date"`
	Weekday   string `json:"weekday"`
	IsToday   bool   `json:"isToday"`
	Nutrition bool   `json:"nutrition"`
	Water     bool   `json:"water"`
	Tasks     bool   `json:"tasks"`
	Complete  bool   `json:"complete"`
}

type DailyView struct {
	Date         string        `json:"date"`
	Tasks        []TaskView    `json:"tasks"`
	Nutrition    NutritionView `json:"nutrition"`
	Water        WaterView     `json:"water"`
	Meals        []MealView    `json:"meals"`
	WeeklyStats  WeeklyStats   `json:"weeklyStats"`
	WeekCalendar []CalendarDay `json:"weekCalendar"`
}
