package routes

import (
	"net/http"

	"cocomarkup/internal/config"
	"cocomarkup/internal/handlers"
	"cocomarkup/internal/logger"
	"cocomarkup/internal/services/websocket"
)

// SetupRoutes registers the progress feed and the log endpoints.
func SetupRoutes(hub *websocket.HubService, cfg *config.Config, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// Progress feed
	mux.HandleFunc("/ws", handlers.ProgressWebsocketHandler(hub, logger))

	// Log endpoints
	for _, level := range []string{"info", "warning", "error"} {
		file := level + ".log"
		mux.HandleFunc("/logs/"+level, handlers.ShowLogsHandler(cfg, file))
		mux.HandleFunc("/logs/"+level+"/clear", handlers.ClearLogsHandler(logger, file))
	}

	return mux
}
