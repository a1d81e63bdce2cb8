package httpapi

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/pub-bets/internal/bet-service/dto"
	"github.com/radieske/pub-bets/internal/catalog"
	"github.com/radieske/pub-bets/internal/store"
	"github.com/radieske/pub-bets/pkg/contracts/events"
)

func (s *Server) getCatalog(w http.ResponseWriter, r *http.Request) {
	c, err := s.st.LoadOrInitialize(r.Context(), s.opts.DefaultCatalog)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// availableLegs lista as legs apostáveis (leg e mercado ativos)
func (s *Server) availableLegs(w http.ResponseWriter, r *http.Request) {
	c, err := s.st.LoadOrInitialize(r.Context(), s.opts.DefaultCatalog)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	legs := slices.Collect(catalog.AvailableLegs(c))
	if legs == nil {
		legs = []catalog.FlatLeg{}
	}
	writeJSON(w, http.StatusOK, legs)
}

// mutate faz o read-modify-write do documento inteiro e publica catalog_updated.
// apply devolve o catálogo novo e o corpo da resposta
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, status int, ev events.CatalogUpdated, apply func(catalog.Catalog) (catalog.Catalog, any, error)) {
	s.catMu.Lock()
	defer s.catMu.Unlock()

	cur, err := store.LoadFresh(r.Context(), s.st, s.opts.DefaultCatalog)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	next, body, err := apply(cur)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if err := s.st.SaveCatalog(r.Context(), next); err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.m.CatalogMutations.WithLabelValues(ev.Op).Inc()

	if err := s.publ.PublishCatalogUpdated(r.Context(), ev); err != nil {
		s.m.PublishErrors.WithLabelValues("catalog_updated").Inc()
		s.log.Warn("publish catalog_updated", zap.String("op", ev.Op), zap.Error(err))
	}
	writeJSON(w, status, body)
}

func (s *Server) setTitle(w http.ResponseWriter, r *http.Request) {
	var req dto.TitleRequest
	if !readJSON(w, r, &req) {
		return
	}
	s.mutate(w, r, http.StatusOK, events.CatalogUpdated{Op: "set_title"}, func(c catalog.Catalog) (catalog.Catalog, any, error) {
		next := catalog.SetEventTitle(c, req.EventTitle)
		return next, next, nil
	})
}

func (s *Server) resetResults(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, http.StatusOK, events.CatalogUpdated{Op: "reset_results"}, func(c catalog.Catalog) (catalog.Catalog, any, error) {
		next := catalog.ResetResults(c)
		return next, next, nil
	})
}

func (s *Server) addMarket(w http.ResponseWriter, r *http.Request) {
	var req dto.MarketRequest
	if !readJSON(w, r, &req) {
		return
	}
	ev := events.CatalogUpdated{Op: "add_market"}
	s.mutate(w, r, http.StatusCreated, ev, func(c catalog.Catalog) (catalog.Catalog, any, error) {
		next, m, err := catalog.AddMarket(c, req.Market())
		return next, m, err
	})
}

func (s *Server) patchMarket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req dto.MarketPatchRequest
	if !readJSON(w, r, &req) {
		return
	}
	s.mutate(w, r, http.StatusOK, events.CatalogUpdated{Op: "update_market", MarketID: id}, func(c catalog.Catalog) (catalog.Catalog, any, error) {
		var err error
		if req.Name != nil {
			if c, err = catalog.RenameMarket(c, id, *req.Name); err != nil {
				return c, nil, err
			}
		}
		if req.Active != nil {
			if c, err = catalog.SetMarketActive(c, id, *req.Active); err != nil {
				return c, nil, err
			}
		}
		for _, m := range c.Markets {
			if m.ID == id {
				return c, m, nil
			}
		}
		return c, nil, catalog.ErrMarketNotFound
	})
}

func (s *Server) removeMarket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mutate(w, r, http.StatusOK, events.CatalogUpdated{Op: "remove_market", MarketID: id}, func(c catalog.Catalog) (catalog.Catalog, any, error) {
		next, removed, err := catalog.RemoveMarket(c, id)
		return next, dto.RemovedResponse{Removed: int64(len(removed)), LegIDs: removed}, err
	})
}

func (s *Server) addLeg(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req dto.LegRequest
	if !readJSON(w, r, &req) {
		return
	}
	s.mutate(w, r, http.StatusCreated, events.CatalogUpdated{Op: "add_leg", MarketID: id}, func(c catalog.Catalog) (catalog.Catalog, any, error) {
		next, leg, err := catalog.AddLeg(c, id, req.Leg())
		return next, leg, err
	})
}

func (s *Server) patchLeg(w http.ResponseWriter, r *http.Request) {
	id, legID := chi.URLParam(r, "id"), chi.URLParam(r, "legID")
	var req dto.LegPatchRequest
	if !readJSON(w, r, &req) {
		return
	}
	ev := events.CatalogUpdated{Op: "update_leg", MarketID: id, LegID: legID}
	if req.Result != nil {
		ev.Op = "set_result"
	}
	s.mutate(w, r, http.StatusOK, ev, func(c catalog.Catalog) (catalog.Catalog, any, error) {
		next, leg, err := catalog.UpdateLeg(c, id, legID, req.Patch())
		return next, leg, err
	})
}

func (s *Server) removeLeg(w http.ResponseWriter, r *http.Request) {
	id, legID := chi.URLParam(r, "id"), chi.URLParam(r, "legID")
	s.mutate(w, r, http.StatusOK, events.CatalogUpdated{Op: "remove_leg", MarketID: id, LegID: legID}, func(c catalog.Catalog) (catalog.Catalog, any, error) {
		next, err := catalog.RemoveLeg(c, id, legID)
		return next, dto.RemovedResponse{Removed: 1, LegIDs: []string{legID}}, err
	})
}
