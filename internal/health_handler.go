package internal

import (
	"context"
	"net/http"
	"time"

	"github.com/2beens/fitcoach/pkg"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const healthPingTimeout = 2 * time.Second

type dbPinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// HealthHandler reports liveness. A failing database makes the service unhealthy,
// a failing redis only degrades it (mutations are then not rate limited).
type HealthHandler struct {
	db    dbPinger
	redis *redis.Client
}

func NewHealthHandler(db dbPinger, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		db:    db,
		redis: redisClient,
	}
}

func (handler *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:   "ok",
		Database: "ok",
		Redis:    "ok",
	}
	statusCode := http.StatusOK

	if err := handler.db.Ping(ctx); err != nil {
		log.Errorf("health: db ping: %s", err)
		resp.Status = "unavailable"
		resp.Database = "unavailable"
		statusCode = http.StatusServiceUnavailable
	}

	if handler.redis == nil {
		resp.Redis = "disabled"
	} else if err := handler.redis.Ping(ctx).Err(); err != nil {
		log.Warnf("health: redis ping: %s", err)
		resp.Redis = "unavailable"
		if statusCode == http.StatusOK {
			resp.Status = "degraded"
		}
	}

	pkg.WriteJSON(w, resp, statusCode)
}
