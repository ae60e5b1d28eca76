package daily

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

// Store is the persistence used by the daily service. Day arguments are YYYY-MM-DD,
// ranges are inclusive on both ends.
type Store interface {
	ActiveTasks(ctx context.Context, customerID uuid.UUID) ([]Task, error)
	// Task returns ErrNotFound unless the task exists and belongs to the customer.
	Task(ctx context.Context, customerID, taskID uuid.UUID) (*Task, error)
	TaskCompletions(ctx context.Context, customerID uuid.UUID, from, to string) ([]TaskCompletion, error)
	NutritionDays(ctx context.Context, customerID uuid.UUID, from, to string) ([]NutritionDay, error)
	WaterDays(ctx context.Context, customerID uuid.UUID, from, to string) ([]WaterDay, error)
	// MealCompletions returns the day's meal completions with their items ordered by order.
	MealCompletions(ctx context.Context, customerID uuid.UUID, day string) ([]MealCompletion, error)
	// TrainingFrequency returns 0 when the customer or its frequency is missing.
	TrainingFrequency(ctx context.Context, customerID uuid.UUID) (int, error)
	// ActivePlanMenu returns ErrNotFound when the customer has no active plan.
	ActivePlanMenu(ctx context.Context, customerID uuid.UUID) (*PlanMenu, error)

	UpsertTaskCompletion(ctx context.Context, completion TaskCompletion) error
	DeleteTaskCompletion(ctx context.Context, customerID, taskID uuid.UUID, day string) error
	UpsertNutrition(ctx context.Context, nutrition NutritionDay) error
	// EnsureNutrition creates a not-followed row for the day when none exists.
	EnsureNutrition(ctx context.Context, customerID uuid.UUID, day string) error
	SetNutritionFollowed(ctx context.Context, customerID uuid.UUID, day string, followed bool) error
	UpsertWater(ctx context.Context, water WaterDay) error
	// EnsureMealCompletion returns the meal completion of the slot, creating it when missing.
	EnsureMealCompletion(ctx context.Context, customerID uuid.UUID, day string, mealType MealType) (*MealCompletion, error)
	// SetMealCompleted sets the meal flag, and the flag of all its items when cascade is set.
	SetMealCompleted(ctx context.Context, mealCompletionID uuid.UUID, completed, cascade bool) error
	SetMealItemCompleted(ctx context.Context, itemID uuid.UUID, completed bool) error
	// UpsertMealItem writes the item keyed by (mealCompletionID, order).
	UpsertMealItem(ctx context.Context, item MealItem) error

	// InTx runs fn with a Store bound to one transaction, committed when fn returns nil.
	InTx(ctx context.Context, fn func(tx Store) error) error
}

// trainingCounter counts completed training sessions in a day range.
type trainingCounter interface {
	CountCompleted(ctx context.Context, customerID uuid.UUID, from, to string) (int, error)
}
