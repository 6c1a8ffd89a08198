package server

import "net/http"

// handleListNotifications returns pending registrations awaiting a decision.
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	pending, err := s.review.ListPending(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pending)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	output, err := s.review.Approve(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, output)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	output, err := s.review.Reject(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, output)
}
