package hub

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// controlMessage is the client->server protocol: explicit join/leave of
// disaster topics. Anything else is ignored.
type controlMessage struct {
	Action string `json:"action"` // "join" or "leave"
	Topic  string `json:"topic"`  // "disaster:<id>"
}

// WSHandler upgrades HTTP requests to WebSocket connections registered with
// the hub. The write loop serializes hub events as JSON text frames; the
// read loop handles join/leave control messages. Either loop ending tears
// the connection down and clears its memberships.
func WSHandler(h *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			slog.Error("websocket upgrade failed", "error", err)
			return
		}

		id, events := h.Register()
		slog.Info("client connected", "conn_id", id, "remote", conn.RemoteAddr())

		done := make(chan struct{})

		// Write loop: drain hub events until the channel closes.
		go func() {
			defer conn.Close()
			for {
				select {
				case evt, ok := <-events:
					if !ok {
						return
					}
					data, err := json.Marshal(evt)
					if err != nil {
						slog.Error("event marshal failed", "conn_id", id, "event", evt.Name, "error", err)
						continue
					}
					if err := wsutil.WriteServerText(conn, data); err != nil {
						// Dead connection; the read loop will unregister.
						return
					}
				case <-done:
					return
				}
			}
		}()

		// Read loop: join/leave control frames until disconnect.
		for {
			data, err := wsutil.ReadClientText(conn)
			if err != nil {
				break
			}
			var msg controlMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				slog.Debug("ignoring malformed control message", "conn_id", id)
				continue
			}
			switch msg.Action {
			case "join":
				if msg.Topic != "" {
					h.Join(id, msg.Topic)
					slog.Debug("client joined topic", "conn_id", id, "topic", msg.Topic)
				}
			case "leave":
				if msg.Topic != "" {
					h.Leave(id, msg.Topic)
				}
			}
		}

		close(done)
		h.Unregister(id)
		conn.Close()
		slog.Info("client disconnected", "conn_id", id)
	}
}
