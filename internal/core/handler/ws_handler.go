package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"payments-service/internal/core/hub"
)

const (
	writeWait        = 10 * time.Second
	subscriberBuffer = 16
)

// WSHandler attaches WebSocket clients to the broadcast hub. All clients see
// all transaction updates; there is no per-client filtering and no replay.
type WSHandler struct {
	h        *hub.Hub
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(h *hub.Hub, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		h:      h,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Broadcast-only stream, no credentials involved.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *WSHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/transactions", h.handleSubscribe)
}

func (h *WSHandler) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	sub := h.h.Subscribe(subscriberBuffer)
	h.logger.Info("subscriber connected", slog.String("remote", conn.RemoteAddr().String()))

	// Reader drains control frames and detects disconnects; it owns the
	// teardown for both goroutines.
	go func() {
		defer h.h.Unsubscribe(sub)
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		defer conn.Close()
		for {
			select {
			case <-sub.Done():
				return
			case evt := <-sub.Events():
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(evt); err != nil {
					return
				}
			}
		}
	}()
}
