package daily

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/fitcoach/internal/auth"
	"github.com/2beens/fitcoach/internal/telemetry/tracing"
	"github.com/2beens/fitcoach/pkg"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const maxCommandBodyBytes = 64 * 1024

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=daily_test

type dailyService interface {
	DailyView(ctx context.Context, customerID uuid.UUID, date string) (*DailyView, error)
	Apply(ctx context.Context, customerID uuid.UUID, cmd Command) error
	ShoppingList(ctx context.Context, customerID uuid.UUID) (*ShoppingListView, error)
}

type Handler struct {
	service dailyService
}

func NewHandler(service dailyService) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.daily.get")
	defer span.End()

	customerID, ok := auth.CustomerIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, pkg.ErrorResponse{Error: "unauthorized"}, http.StatusUnauthorized)
		return
	}

	view, err := handler.service.DailyView(ctx, customerID, r.URL.Query().Get("date"))
	if err != nil {
		writeServiceError(w, "failed to get daily tasks", err)
		return
	}

	pkg.WriteJSON(w, view, http.StatusOK)
}

func (handler *Handler) HandlePost(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.daily.post")
	defer span.End()

	customerID, ok := auth.CustomerIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, pkg.ErrorResponse{Error: "unauthorized"}, http.StatusUnauthorized)
		return
	}

	var cmd Command
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCommandBodyBytes)).Decode(&cmd); err != nil {
		log.Debugf("daily post, unmarshal json body: %s", err)
		pkg.WriteJSONError(w, pkg.ErrorResponse{Error: "invalid json body", Details: err.Error()}, http.StatusBadRequest)
		return
	}

	if err := handler.service.Apply(ctx, customerID, cmd); err != nil {
		writeServiceError(w, "failed to update daily tasks", err)
		return
	}

	pkg.WriteJSON(w, map[string]bool{"success": true}, http.StatusOK)
}

func (handler *Handler) HandleShoppingList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.daily.shopping-list")
	defer span.End()

	customerID, ok := auth.CustomerIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, pkg.ErrorResponse{Error: "unauthorized"}, http.StatusUnauthorized)
		return
	}

	list, err := handler.service.ShoppingList(ctx, customerID)
	if err != nil {
		writeServiceError(w, "failed to build shopping list", err)
		return
	}

	pkg.WriteJSON(w, list, http.StatusOK)
}

func writeServiceError(w http.ResponseWriter, message string, err error) {
	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		resp := pkg.ErrorResponse{Error: validationErr.Message}
		if validationErr.Field != "" {
			resp.Meta = map[string]string{"field": validationErr.Field}
		}
		pkg.WriteJSONError(w, resp, http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		pkg.WriteJSONError(w, pkg.ErrorResponse{Error: "task not found"}, http.StatusNotFound)
	default:
		if pkg.IsForeignKeyViolationError(err) || pkg.IsUniqueViolationError(err) {
			// unknown customer or a concurrent first write of the day
			log.Warnf("%s: %s", message, err)
		} else {
			log.Errorf("%s: %s", message, err)
		}
		pkg.WriteJSONError(w, pkg.DBErrorResponse(message, err), http.StatusInternalServerError)
	}
}
