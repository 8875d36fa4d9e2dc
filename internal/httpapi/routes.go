package httpapi

import (
	"math/rand"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pretzelhammer/drawduel/internal/hub"
	"github.com/pretzelhammer/drawduel/internal/ws"
)

func SetupRoutes(h *hub.Hub, logger *zap.Logger, rng *rand.Rand) http.Handler {
	r := chi.NewRouter()

	r.Post("/games", CreateGame(h, logger, rng))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, logger))
	return r
}
