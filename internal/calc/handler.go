package calc

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/2beens/fitcoach/internal/telemetry/tracing"
	"github.com/2beens/fitcoach/pkg"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

type MacrosRequest struct {
	Ingredient Ingredient `json:"ingredient"`
	Quantity   float64    `json:"quantity" validate:"gt=0"`
	Unit       string     `json:"unit"`
}

type NutritionRequest struct {
	Ingredient Ingredient `json:"ingredient"`
	Grams      float64    `json:"grams" validate:"gt=0"`
}

type NutritionResponse struct {
	Normalized NormalizedIngredient `json:"normalized"`
	Nutrition  Nutrition            `json:"nutrition"`
}

type IngredientsRequest struct {
	Text string `json:"text"`
}

type IngredientsResponse struct {
	Ingredients []ParsedIngredient `json:"ingredients"`
}

const (
	maxRequestBodyBytes = 64 * 1024

	maxDurationWeeks   = 104
	maxSessionsPerWeek = 14
)

// Handler serves the stateless calculators.
type Handler struct {
	validate *validator.Validate
}

func NewHandler() *Handler {
	return &Handler{
		validate: pkg.NewValidator(),
	}
}

func (handler *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), pkg.ContentType.JSON) {
		pkg.WriteJSONError(w, pkg.ErrorResponse{Error: "invalid content type"}, http.StatusBadRequest)
		return false
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(target); err != nil {
		log.Debugf("calculators, unmarshal json body: %s", err)
		pkg.WriteJSONError(w, pkg.ErrorResponse{Error: "invalid json body", Details: err.Error()}, http.StatusBadRequest)
		return false
	}
	if err := handler.validate.Struct(target); err != nil {
		pkg.WriteJSONError(w, pkg.ErrorResponse{Error: "invalid request", Details: validationDetails(err)}, http.StatusBadRequest)
		return false
	}
	return true
}

func validationDetails(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err.Error()
	}
	details := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		details = append(details, fmt.Sprintf("%s: %s", pkg.FieldPath(fe), fe.Tag()))
	}
	return strings.Join(details, "; ")
}

func (handler *Handler) HandleMacros(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.calculators.macros")
	defer span.End()

	var req MacrosRequest
	if !handler.decode(w, r, &req) {
		return
	}

	if _, err := ParseServing(req.Ingredient.Per); err != nil {
		pkg.WriteJSONError(w, pkg.ErrorResponse{Error: "invalid ingredient serving", Details: err.Error()}, http.StatusBadRequest)
		return
	}

	pkg.WriteJSON(w, CalculateMacros(req.Ingredient, req.Quantity, req.Unit), http.StatusOK)
}

func (handler *Handler) HandleNutrition(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.calculators.nutrition")
	defer span.End()

	var req NutritionRequest
	if !handler.decode(w, r, &req) {
		return
	}

	normalized := Normalize(req.Ingredient)
	pkg.WriteJSON(w, NutritionResponse{
		Normalized: normalized,
		Nutrition:  CalculateNutrition(normalized, req.Grams),
	}, http.StatusOK)
}

func (handler *Handler) HandleIngredients(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.calculators.ingredients")
	defer span.End()

	var req IngredientsRequest
	if !handler.decode(w, r, &req) {
		return
	}

	ingredients, err := ParseIngredients(req.Text)
	var parseFailure *ParseFailure
	switch {
	case err == nil:
		pkg.WriteJSON(w, IngredientsResponse{Ingredients: ingredients}, http.StatusOK)
	case errors.Is(err, ErrNoIngredients):
		pkg.WriteJSON(w, IngredientsResponse{Ingredients: []ParsedIngredient{}}, http.StatusOK)
	case errors.As(err, &parseFailure):
		pkg.WriteJSONError(w, pkg.ErrorResponse{
			Error:   "cannot parse ingredients",
			Details: parseFailure.Reason,
			Meta:    map[string]string{"fragment": parseFailure.Fragment},
		}, http.StatusUnprocessableEntity)
	default:
		log.Errorf("parse ingredients: %s", err)
		pkg.WriteJSONError(w, pkg.ErrorResponse{Error: "parse ingredients failed"}, http.StatusInternalServerError)
	}
}

func (handler *Handler) HandlePricing(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.calculators.pricing")
	defer span.End()

	duration, err := strconv.Atoi(r.URL.Query().Get("duration"))
	if err != nil || duration < 1 || duration > maxDurationWeeks {
		pkg.WriteJSONError(w, pkg.ErrorResponse{
			Error: fmt.Sprintf("invalid duration, expected 1 to %d weeks", maxDurationWeeks),
		}, http.StatusBadRequest)
		return
	}
	frequency, err := strconv.Atoi(r.URL.Query().Get("frequency"))
	if err != nil || frequency < 1 || frequency > maxSessionsPerWeek {
		pkg.WriteJSONError(w, pkg.ErrorResponse{
			Error: fmt.Sprintf("invalid frequency, expected 1 to %d sessions per week", maxSessionsPerWeek),
		}, http.StatusBadRequest)
		return
	}

	pkg.WriteJSON(w, Quote(duration, frequency), http.StatusOK)
}
