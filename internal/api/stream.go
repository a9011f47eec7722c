package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/trogers1052/networth-tracker/internal/logging"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// StreamReports handles GET /users/{user}/stream. Each refreshed report is pushed as one
// JSON text message until the client goes away.
func (h *Handler) StreamReports(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user"]

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client
		logging.FromContext(r.Context()).WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	reports, unsubscribe := h.stream.Subscribe(userID)
	defer unsubscribe()

	// the read loop only serves control frames and notices the client leaving
	gone := make(chan struct{})
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	log := logging.FromContext(r.Context()).WithField("user_id", userID)
	log.Debug("Report stream opened")
	for {
		select {
		case <-gone:
			log.Debug("Report stream closed by client")
			return
		case <-r.Context().Done():
			return
		case report, ok := <-reports:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(writeWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(report); err != nil {
				log.WithError(err).Debug("Report stream write failed")
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
