package httpapi

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/pretzelhammer/drawduel/internal/game"
	"github.com/pretzelhammer/drawduel/internal/hub"
	"github.com/pretzelhammer/drawduel/internal/ident"
	"github.com/pretzelhammer/drawduel/internal/pipeline"
)

// lockedRand shares one rand.Rand across concurrent HTTP handlers.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (l *lockedRand) with(f func(*rand.Rand)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	f(l.rng)
}

// createGameResponse bootstraps a client: a fresh game id plus
// suggested credentials, so the index page can build a join URL in one
// request.
type createGameResponse struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
	Pass     string `json:"pass"`
	Name     string `json:"name"`
}

// CreateGame picks an unused short game id. The id space is small on
// purpose (readable URLs), so collisions are expected and retried.
func CreateGame(h *hub.Hub, logger *zap.Logger, rng *rand.Rand) http.HandlerFunc {
	lr := &lockedRand{rng: rng}
	return func(w http.ResponseWriter, r *http.Request) {
		var resp createGameResponse
		for {
			var id string
			lr.with(func(rng *rand.Rand) { id = ident.RandomGameID(rng) })

			reply := make(chan *pipeline.Game, 1)
			h.Inbox() <- hub.GetGame{ID: game.GameID(id), Reply: reply}
			if <-reply == nil {
				resp.GameID = id
				break
			}
			logger.Debug("game id collision, regenerating", zap.String("game_id", id))
		}
		lr.with(func(rng *rand.Rand) {
			resp.PlayerID = ident.RandomPlayerID(rng)
			resp.Pass = ident.RandomPass(rng)
			resp.Name = ident.RandomPlayerName(rng)
		})

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
