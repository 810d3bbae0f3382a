package server

import (
	"net/http"

	"github.com/granahq/grana/internal/models"
)

type assistantRequest struct {
	Message string `json:"message"`
}

// handleAssistantMessage handles POST /api/assistant/message. The reply kind
// travels in the body; only transport-level failures use non-200 statuses so
// the UI can always render the assistant's text.
func (s *Server) handleAssistantMessage(w http.ResponseWriter, r *http.Request) {
	if _, ok := RequireUser(w, r); !ok {
		return
	}
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req assistantRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	reply, err := s.app.AssistantService.HandleMessage(r.Context(), req.Message)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := http.StatusOK
	if reply.IsError() {
		s.logger.Warn().Str("kind", string(reply.Kind)).Msg("assistant returned error reply")
		if reply.Kind == models.ReplyConfigError {
			status = http.StatusServiceUnavailable
		}
	}
	WriteJSON(w, status, reply)
}
