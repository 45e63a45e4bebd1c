package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/baechuer/church-service/internal/transport/http/dto"
	"github.com/baechuer/church-service/internal/transport/http/response"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

// NewHealthHandler takes the database to ping; nil means the memory store.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health always answers 200 while the process is serving; the database state
// is reported in the body.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	out := dto.HealthResp{Status: "ok", Database: "memory"}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			out.Database = "down"
		} else {
			out.Database = "up"
		}
	}
	response.Data(w, http.StatusOK, out)
}
