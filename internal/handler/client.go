package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"camshare/internal/logger"
	"camshare/internal/service"
)

// Upgrader upgrades HTTP connections to WebSocket; CheckOrigin allows all origins.
var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ViewWebsocketHandler streams access-control and scan events to a viewer.
// With ?session=<id> the viewing session is closed when the socket drops.
func ViewWebsocketHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session")
		if sessionID != "" {
			if _, err := manager.GetSession(sessionID); err != nil {
				fail(w, logger, err)
				return
			}
		}

		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}

		hub := manager.GetWebsocketService()
		if !hub.Register(connection) {
			connection.Close()
			return
		}
		defer hub.Unregister(connection)
		if sessionID != "" {
			defer func() {
				if err := manager.CloseSession(sessionID); err == nil {
					logger.Info("Viewing session %s closed with its socket", sessionID)
				}
			}()
		}

		logger.Info("Viewer %s connected", actor(r))

		for {
			_, _, err := connection.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Info("Viewer disconnected normally")
				} else {
					logger.Error("Viewer disconnected with error: %v", err)
				}
				break
			}
		}
	}
}
