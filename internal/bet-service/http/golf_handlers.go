package httpapi

import (
	"net/http"

	"github.com/radieske/pub-bets/internal/bet-service/dto"
	"github.com/radieske/pub-bets/internal/golf"
)

func (s *Server) listScores(w http.ResponseWriter, r *http.Request) {
	scores, err := s.st.ListScores(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

// ladder só conta scores confirmados pelo admin
func (s *Server) ladder(w http.ResponseWriter, r *http.Request) {
	scores, err := s.st.ListScores(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, golf.Ladder(scores))
}

func (s *Server) saveScore(w http.ResponseWriter, r *http.Request) {
	var req dto.ScoreRequest
	if !readJSON(w, r, &req) {
		return
	}
	saved, err := s.st.SaveScore(r.Context(), golf.Score{
		Team:      req.Team,
		Hole:      req.Hole,
		Sips:      req.Sips,
		Penalties: req.Penalties,
	})
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) confirmScore(w http.ResponseWriter, r *http.Request) {
	var req dto.ConfirmScoreRequest
	if !readJSON(w, r, &req) {
		return
	}
	if err := s.st.ConfirmScore(r.Context(), req.Team, req.Hole); err != nil {
		s.writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
