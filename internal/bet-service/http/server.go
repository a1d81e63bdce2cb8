package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/radieske/pub-bets/internal/bets"
	"github.com/radieske/pub-bets/internal/betslip"
	"github.com/radieske/pub-bets/internal/catalog"
	"github.com/radieske/pub-bets/internal/golf"
	"github.com/radieske/pub-bets/internal/shared/metrics"
	"github.com/radieske/pub-bets/internal/store"
	"github.com/radieske/pub-bets/pkg/contracts/events"
)

// Publisher é o lado Kafka do bet-service. Falhas são só logadas
type Publisher interface {
	PublishBetPlaced(context.Context, events.BetPlaced) error
	PublishCatalogUpdated(context.Context, events.CatalogUpdated) error
	PublishBetsCleared(context.Context, events.BetsCleared) error
}

// Archiver exporta as apostas arquivadas (S3). Opcional
type Archiver interface {
	Export(ctx context.Context, archived []bets.Bet, c catalog.Catalog) (string, error)
}

type Options struct {
	AccessCode     string
	AdminPIN       string
	MaxPayout      float64
	DefaultCatalog catalog.Catalog
	CORSOrigins    []string

	Archive Archiver     // nil desliga o export
	WS      http.Handler // nil desliga /ws
}

type Server struct {
	log  *zap.Logger
	st   store.Store
	publ Publisher
	m    *metrics.BetService
	opts Options

	// serializa o read-modify-write do catálogo dentro desta instância
	catMu sync.Mutex
}

func NewServer(log *zap.Logger, st store.Store, publ Publisher, m *metrics.BetService, opts Options) *Server {
	if opts.MaxPayout <= 0 {
		opts.MaxPayout = 200
	}
	return &Server{log: log, st: st, publ: publ, m: m, opts: opts}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", headerAccessCode, headerAdminPIN},
		MaxAge:         300,
	}))
	r.Use(s.session)

	if s.opts.WS != nil {
		r.Handle("/ws", s.opts.WS)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(15 * time.Second))

		r.Get("/catalog", s.getCatalog)
		r.Get("/catalog/available", s.availableLegs)
		r.Post("/betslip/quote", s.quote)
		r.Get("/bets", s.listBets)
		r.Get("/golf/ladder", s.ladder)
		r.Get("/golf/scores", s.listScores)

		r.Group(func(r chi.Router) {
			r.Use(requireAuthorized)
			r.Post("/bets", s.placeBet)
			r.Put("/golf/scores", s.saveScore)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Put("/catalog/title", s.setTitle)
			r.Post("/catalog/reset-results", s.resetResults)
			r.Post("/markets", s.addMarket)
			r.Patch("/markets/{id}", s.patchMarket)
			r.Delete("/markets/{id}", s.removeMarket)
			r.Post("/markets/{id}/legs", s.addLeg)
			r.Patch("/markets/{id}/legs/{legID}", s.patchLeg)
			r.Delete("/markets/{id}/legs/{legID}", s.removeLeg)
			r.Delete("/bets/{id}", s.deleteBet)
			r.Delete("/bets", s.deleteAllBets)
			r.Post("/bets/archive", s.archiveBets)
			r.Post("/golf/scores/confirm", s.confirmScore)
		})
	})
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// readJSON decodifica o corpo; campos desconhecidos são recusados
func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeMsg(w, http.StatusBadRequest, "bad json")
		return false
	}
	return true
}

// writeErr traduz erros do domínio/store em status HTTP. Qualquer outro erro é
// falha de persistência: a sessão continua e o cliente pode tentar de novo
func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, betslip.ErrUnauthorized):
		writeMsg(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, catalog.ErrMarketNotFound),
		errors.Is(err, catalog.ErrLegNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, golf.ErrNotFound):
		writeMsg(w, http.StatusNotFound, err.Error())
	case errors.Is(err, catalog.ErrDuplicateID):
		writeMsg(w, http.StatusConflict, err.Error())
	case errors.Is(err, catalog.ErrEmptyName),
		errors.Is(err, catalog.ErrInvalidOdds),
		errors.Is(err, catalog.ErrInvalidResult),
		errors.Is(err, bets.ErrInvalidMode),
		errors.Is(err, betslip.ErrNameRequired),
		errors.Is(err, betslip.ErrNoLegs),
		errors.Is(err, golf.ErrTeamRequired),
		errors.Is(err, golf.ErrInvalidHole):
		writeMsg(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeMsg(w, http.StatusGatewayTimeout, "storage timed out, try again")
	default:
		s.log.Error("store failure",
			zap.String("path", r.URL.Path),
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			zap.Error(err))
		writeMsg(w, http.StatusBadGateway, "could not reach storage: "+err.Error())
	}
}
