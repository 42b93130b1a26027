package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/murmur/internal/httpserver/deps"
	"github.com/MrSnakeDoc/murmur/internal/logger"
)

// Reload triggers a manual reload of the content-policy file.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.PolicyReloadTrigger == nil {
			httpError(w, http.StatusNotFound, "validation_error", "no policy file configured")
			return
		}

		select {
		case d.PolicyReloadTrigger <- struct{}{}:
			d.Logger.Info("manual policy reload triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, map[string]string{"status": "reload triggered"})
		default:
			d.Logger.Warn("policy reload already in progress",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"status": "reload already in progress"})
		}
	}
}
