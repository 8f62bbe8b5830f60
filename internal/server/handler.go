package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/dealbot/resource"
	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/logging"
	qrcode "github.com/skip2/go-qrcode"
)

// HandleHealth is the liveness endpoint.
func HandleHealth(ctx context.Context) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := fmt.Fprint(w, `{"status":"ok"}`); err != nil {
			logging.FromContext(ctx).Errorf("health write: %v", err)
		}
	})
}

// handleQR renders a join-link QR code for a room code, so a host can hand
// the lobby to phones without dictating six characters.
func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(s.ctx).Named("server.qr")

	code := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("code")))
	if len(code) != resource.CodeLen {
		http.Error(w, resource.TextCodeRequired, http.StatusBadRequest)
		return
	}
	if _, ok := s.manager.Store().Room(code); !ok {
		http.Error(w, resource.TextRoomNotFound, http.StatusNotFound)
		return
	}

	png, err := qrcode.Encode(s.publicURL+"/?join="+code, qrcode.Medium, 256)
	if err != nil {
		logger.Errorf("qr encode: %v", err)
		http.Error(w, "qr encoding failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}
