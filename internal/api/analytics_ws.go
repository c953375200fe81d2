package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/terra-clan/portfolio/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// AnalyticsMessage is pushed to the analytics websocket
type AnalyticsMessage struct {
	Type  string            `json:"type"` // analytics | error
	Data  *models.Analytics `json:"data,omitempty"`
	Error string            `json:"error,omitempty"`
}

// handleAnalyticsWS streams the visitor's analytics block, so the visit
// timer on the page ticks without polling
func (s *Server) handleAnalyticsWS(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	slog.Info("analytics websocket connected", "visitor", v.ID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Drain client frames; a read error means the peer went away
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					slog.Debug("websocket read error", "error", err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(s.analyticsInterval)
	defer ticker.Stop()
	defer slog.Info("analytics websocket disconnected", "visitor", v.ID)

	for {
		if err := s.pushAnalytics(ctx, conn, v.ID); err != nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) pushAnalytics(ctx context.Context, conn *websocket.Conn, visitorID string) error {
	msg := AnalyticsMessage{Type: "analytics"}

	a, err := s.analyticsFor(ctx, visitorID)
	if err != nil {
		slog.Warn("failed to load analytics", "error", err, "visitor", visitorID)
		msg = AnalyticsMessage{Type: "error", Error: "analytics unavailable"}
	} else {
		msg.Data = &a
	}

	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal analytics message", "error", err)
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Debug("failed to send analytics message", "error", err)
		return err
	}
	return nil
}
