package handler

import (
	"log"
	"net/http"
	"time"

	"contest_arena/internal/api/middleware"
	"contest_arena/internal/app/service"
	"contest_arena/internal/common"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
	pushInterval       time.Duration
	upgrader           websocket.Upgrader
}

func NewLeaderboardHandler(ls *service.LeaderboardService, pushInterval time.Duration) *LeaderboardHandler {
	if pushInterval <= 0 {
		pushInterval = 5 * time.Second
	}
	return &LeaderboardHandler{
		leaderboardService: ls,
		pushInterval:       pushInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *LeaderboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{contestID}/leaderboard", h.getLeaderboard)
}

// RegisterLiveRoutes mounts the websocket stream. It must not sit behind a
// request timeout.
func (h *LeaderboardHandler) RegisterLiveRoutes(r chi.Router) {
	r.Get("/{contestID}/leaderboard/live", h.liveLeaderboard)
}

func (h *LeaderboardHandler) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())

	board, err := h.leaderboardService.Get(r.Context(), identity, chi.URLParam(r, "contestID"))
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, board)
}

type liveMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// liveLeaderboard pushes the standings every pushInterval until the client
// goes away. The contest is checked before upgrading so a bad id still gets a
// plain envelope.
func (h *LeaderboardHandler) liveLeaderboard(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())
	contestID := chi.URLParam(r, "contestID")

	board, err := h.leaderboardService.Get(r.Context(), identity, contestID)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WARN: ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Clients never send anything meaningful; reading only detects the close.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.pushInterval)
	defer ticker.Stop()

	msg := liveMessage{Type: "leaderboard", Payload: board}
	for {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("WARN: ws write error: %v", err)
			return
		}

		select {
		case <-readerDone:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		board, err := h.leaderboardService.Get(r.Context(), identity, contestID)
		if err != nil {
			msg = liveMessage{Type: "error", Payload: common.ErrorCode(err)}
			continue
		}
		msg = liveMessage{Type: "leaderboard", Payload: board}
	}
}
