package daily

import (
	"errors"
	"fmt"
	"strings"

	"github.com/2beens/fitcoach/pkg"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	CommandTask      = "task"
	CommandNutrition = "nutrition"
	CommandMeal      = "meal"
	CommandWater     = "water"
)

// Command is the body of a daily tracking mutation.
type Command struct {
	Type      string          `json:"type" validate:"required,oneof=task nutrition meal water"`
	Date      string          `json:"date,omitempty"`
	TaskID    string          `json:"taskId,omitempty"`
	Completed *bool           `json:"completed,omitempty"`
	Value     *float64        `json:"value,omitempty"`
	Notes     *string         `json:"notes,omitempty"`
	Nutrition *NutritionInput `json:"nutrition,omitempty"`

	MealType   string `json:"mealType,omitempty"`
	MealItemID string `json:"mealItemId,omitempty"`
	ItemText   string `json:"itemText,omitempty"`
	ItemOrder  *int   `json:"itemOrder,omitempty" validate:"omitempty,gte=0"`

	Water *WaterInput `json:"water,omitempty"`
}

type NutritionInput struct {
	Followed *bool   `json:"followed" validate:"required"`
	Notes    *string `json:"notes,omitempty"`
}

type WaterInput struct {
	Amount *float64 `json:"amount" validate:"required,gte=0"`
	Target *float64 `json:"target" validate:"required,gt=0"`
}

// ValidationError names the offending JSON field of a command.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func missingField(field string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("missing required field: %s", field),
	}
}

var validate = pkg.NewValidator()

// Validate checks the fields every command type needs.
func (c *Command) Validate() error {
	if err := validate.Struct(c); err != nil {
		return toValidationError(err)
	}

	switch c.Type {
	case CommandTask:
		if strings.TrimSpace(c.TaskID) == "" {
			return missingField("taskId")
		}
		if _, err := uuid.Parse(c.TaskID); err != nil {
			return &ValidationError{Field: "taskId", Message: fmt.Sprintf("invalid field: taskId %q is not a valid id", c.TaskID)}
		}
		if c.Completed == nil {
			return missingField("completed")
		}
	case CommandNutrition:
		if c.Nutrition == nil {
			return missingField("nutrition.followed")
		}
	case CommandMeal:
		if strings.TrimSpace(c.MealType) == "" {
			return missingField("mealType")
		}
		if _, ok := ParseMealType(c.MealType); !ok {
			return &ValidationError{Field: "mealType", Message: fmt.Sprintf("invalid field: unknown mealType %q", c.MealType)}
		}
		if c.Completed == nil {
			return missingField("completed")
		}
	case CommandWater:
		if c.Water == nil {
			return missingField("water.amount")
		}
	}
	return nil
}

func toValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fieldErr := validationErrs[0]
	field := pkg.FieldPath(fieldErr)

	switch fieldErr.Tag() {
	case "required":
		return missingField(field)
	case "oneof":
		return &ValidationError{Field: field, Message: fmt.Sprintf("invalid field: %s must be one of [%s]", field, fieldErr.Param())}
	case "gt":
		return &ValidationError{Field: field, Message: fmt.Sprintf("invalid field: %s must be greater than %s", field, fieldErr.Param())}
	case "gte":
		return &ValidationError{Field: field, Message: fmt.Sprintf("invalid field: %s must be at least %s", field, fieldErr.Param())}
	default:
		return &ValidationError{Field: field, Message: fmt.Sprintf("invalid field: %s", field)}
	}
}
