package feed

import (
	"log/slog"
	"net/http"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// WSHandler upgrades the connection and streams link events as JSON text
// frames until the client goes away.
func WSHandler(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			slog.Debug("feed upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}

		id, ch := broker.Subscribe()
		slog.Info("feed client connected", "remote", r.RemoteAddr, "clients", broker.ClientCount())

		closed := make(chan struct{})
		go func() {
			// Drain control frames and detect disconnects.
			defer close(closed)
			for {
				if _, _, err := wsutil.ReadClientData(conn); err != nil {
					return
				}
			}
		}()

		defer func() {
			broker.Unsubscribe(id)
			_ = conn.Close()
			slog.Info("feed client disconnected", "remote", r.RemoteAddr)
		}()

		for {
			select {
			case <-closed:
				return
			case evt, ok := <-ch:
				if !ok {
					return
				}
				payload, err := evt.encode()
				if err != nil {
					continue
				}
				if err := wsutil.WriteServerText(conn, payload); err != nil {
					return
				}
			}
		}
	}
}
