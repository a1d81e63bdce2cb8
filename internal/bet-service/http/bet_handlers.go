package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/pub-bets/internal/bet-service/board"
	"github.com/radieske/pub-bets/internal/bet-service/dto"
	"github.com/radieske/pub-bets/internal/bets"
	"github.com/radieske/pub-bets/internal/betslip"
	"github.com/radieske/pub-bets/internal/catalog"
	"github.com/radieske/pub-bets/internal/store"
	"github.com/radieske/pub-bets/pkg/contracts/events"
)

// quote precifica o betslip sem gravar nada. Não exige sessão
func (s *Server) quote(w http.ResponseWriter, r *http.Request) {
	var req dto.SlipRequest
	if !readJSON(w, r, &req) {
		return
	}
	slip, err := req.Slip()
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	c, err := s.st.LoadOrInitialize(r.Context(), s.opts.DefaultCatalog)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, slip.Quote(c, s.opts.MaxPayout))
}

func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if !readJSON(w, r, &req) {
		return
	}
	slip, err := req.Slip()
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	// odds congeladas na aposta vêm da fonte, não do cache
	c, err := store.LoadFresh(r.Context(), s.st, s.opts.DefaultCatalog)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	d, err := slip.Place(sessionFrom(r.Context()), bets.NewBettor(req.Name, req.Email), c, s.opts.MaxPayout)
	if err != nil {
		s.m.BetsRejected.WithLabelValues(rejectReason(err)).Inc()
		s.writeErr(w, r, err)
		return
	}
	id, err := s.st.CreateBet(r.Context(), d)
	if err != nil {
		s.m.BetsRejected.WithLabelValues("store").Inc()
		s.writeErr(w, r, err)
		return
	}
	s.m.BetsPlaced.Inc()

	b := bets.Bet{ID: id, Draft: d}
	st := bets.Settle(b, catalog.Lookup(c))

	legIDs := make([]string, 0, len(d.Legs))
	for _, l := range d.Legs {
		legIDs = append(legIDs, l.LegID)
	}
	if err := s.publ.PublishBetPlaced(r.Context(), events.BetPlaced{
		BetID:     id,
		BettorKey: d.Bettor.Key,
		Mode:      string(d.Mode),
		LegIDs:    legIDs,
		Stake:     st.Stake,
	}); err != nil {
		s.m.PublishErrors.WithLabelValues("bet_placed").Inc()
		s.log.Warn("publish bet_placed", zap.String("bet_id", id), zap.Error(err))
	}

	s.log.Info("bet placed",
		zap.String("bet_id", id),
		zap.String("bettor", d.Bettor.Key),
		zap.String("mode", string(d.Mode)),
		zap.Int("legs", len(d.Legs)),
		zap.Float64("stake", st.Stake))
	writeJSON(w, http.StatusCreated, dto.PlaceBetResponse{BetID: id, Settlement: st})
}

// listBets devolve as apostas (mais recente primeiro) com a liquidação atual.
// ?name=&email= filtra pelas apostas do próprio apostador
func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	c, err := s.st.LoadOrInitialize(r.Context(), s.opts.DefaultCatalog)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	list, err := s.st.ListBets(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if q := r.URL.Query(); q.Has("name") {
		list = bets.FilterByKey(list, bets.MakeKey(q.Get("name"), q.Get("email")))
	}
	writeJSON(w, http.StatusOK, dto.BetsResponse{Bets: board.Settle(c, list)})
}

func (s *Server) deleteBet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.st.DeleteBet(r.Context(), id); err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.RemovedResponse{Removed: 1})
}

func (s *Server) deleteAllBets(w http.ResponseWriter, r *http.Request) {
	n, err := s.st.DeleteAllBets(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.publishCleared(r, events.BetsCleared{Count: n})
	writeJSON(w, http.StatusOK, dto.RemovedResponse{Removed: n})
}

// archiveBets move tudo para o arquivo e, se houver bucket, exporta em JSONL.
// Falha no export não desfaz o arquivamento
func (s *Server) archiveBets(w http.ResponseWriter, r *http.Request) {
	c, err := s.st.LoadOrInitialize(r.Context(), s.opts.DefaultCatalog)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	archived, err := s.st.ArchiveAndDeleteAllBets(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	resp := dto.RemovedResponse{Removed: int64(len(archived))}
	s.publishCleared(r, events.BetsCleared{Archived: true, Count: resp.Removed})

	if s.opts.Archive != nil {
		key, err := s.opts.Archive.Export(r.Context(), archived, c)
		if err != nil {
			s.log.Error("archive export", zap.Int("bets", len(archived)), zap.Error(err))
			resp.Message = "bets archived, export failed: " + err.Error()
		}
		resp.ArchiveKey = key
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) publishCleared(r *http.Request, ev events.BetsCleared) {
	if err := s.publ.PublishBetsCleared(r.Context(), ev); err != nil {
		s.m.PublishErrors.WithLabelValues("bets_cleared").Inc()
		s.log.Warn("publish bets_cleared", zap.Error(err))
	}
}

// rejectReason mantém a cardinalidade do label baixa
func rejectReason(err error) string {
	switch {
	case errors.Is(err, betslip.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, betslip.ErrNameRequired):
		return "name_required"
	case errors.Is(err, betslip.ErrNoLegs):
		return "no_legs"
	}
	return "other"
}
