// Package betslip monta a seleção em andamento do apostador em cotações e, quando
// as pré-condições são atendidas, num Draft pronto para o store.
package betslip

import (
	"errors"
	"sort"
	"strings"

	"github.com/radieske/pub-bets/internal/bets"
	"github.com/radieske/pub-bets/internal/catalog"
	"github.com/radieske/pub-bets/internal/shared/money"
)

var (
	ErrUnauthorized = errors.New("enter the access code before placing a bet")
	ErrNameRequired = errors.New("name is required")
	ErrNoLegs       = errors.New("select at least one leg")
)

// Session carrega as permissões da sessão. Admin implica Authorized
type Session struct {
	Authorized bool
	Admin      bool
}

func (s Session) CanBet() bool { return s.Authorized || s.Admin }

// Slip guarda seleção e stakes de uma sessão. Não é seguro para uso concorrente
type Slip struct {
	selected     map[string]struct{}
	mode         bets.Mode
	multiStake   float64
	singleStakes map[string]float64
}

func New() *Slip {
	return &Slip{
		selected:     make(map[string]struct{}),
		mode:         bets.ModeMulti,
		singleStakes: make(map[string]float64),
	}
}

// Toggle seleciona se ausente, remove se presente
func (s *Slip) Toggle(legID string) {
	if _, ok := s.selected[legID]; ok {
		s.Deselect(legID)
		return
	}
	s.Select(legID)
}

func (s *Slip) Select(legIDs ...string) {
	for _, id := range legIDs {
		if id = strings.TrimSpace(id); id != "" {
			s.selected[id] = struct{}{}
		}
	}
}

func (s *Slip) Deselect(legID string) {
	delete(s.selected, legID)
	delete(s.singleStakes, legID)
}

// Forget descarta legs removidas do catálogo
func (s *Slip) Forget(legIDs ...string) {
	for _, id := range legIDs {
		s.Deselect(id)
	}
}

// Prune descarta seleções cuja leg não existe mais no catálogo. Legs apenas
// inativas continuam selecionadas e só saem da cotação
func (s *Slip) Prune(c catalog.Catalog) {
	for id := range s.selected {
		if _, ok := catalog.FindLeg(c, id); !ok {
			s.Deselect(id)
		}
	}
}

// Clear esvazia o betslip após a aposta confirmada. O modo é mantido
func (s *Slip) Clear() {
	clear(s.selected)
	clear(s.singleStakes)
	s.multiStake = 0
}

func (s *Slip) SetMode(m bets.Mode) { s.mode = m }

func (s *Slip) Mode() bets.Mode { return s.mode }

func (s *Slip) SetMultiStake(stake float64) { s.multiStake = stake }

func (s *Slip) SetSingleStake(legID string, stake float64) {
	s.singleStakes[legID] = stake
}

// Selected retorna os IDs selecionados, ordenados
func (s *Slip) Selected() []string {
	ids := make([]string, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Slip) Has(legID string) bool {
	_, ok := s.selected[legID]
	return ok
}

// Place valida as pré-condições e congela a cotação num Draft. O betslip não é
// alterado; quem chama faz Clear depois que o store confirmar a gravação
func (s *Slip) Place(sess Session, bettor bets.Bettor, c catalog.Catalog, maxPayout float64) (bets.Draft, error) {
	if !sess.CanBet() {
		return bets.Draft{}, ErrUnauthorized
	}
	bettor = bets.NewBettor(bettor.Name, bettor.Email)
	if bettor.Name == "" {
		return bets.Draft{}, ErrNameRequired
	}
	q := s.Quote(c, maxPayout)
	if len(q.Legs) == 0 {
		return bets.Draft{}, ErrNoLegs
	}

	d := bets.Draft{
		Bettor: bettor,
		Mode:   q.Mode,
		Legs:   make([]bets.LegSnapshot, 0, len(q.Legs)),
	}
	for _, l := range q.Legs {
		d.Legs = append(d.Legs, bets.LegSnapshot{
			LegID:      l.ID,
			Label:      l.Label,
			MarketName: l.MarketName,
			Odds:       money.Round2(l.Odds),
		})
	}
	if q.Mode == bets.ModeSingles {
		d.StakesByLeg = make(map[string]float64, len(q.Singles))
		for _, sq := range q.Singles {
			d.StakesByLeg[sq.LegID] = sq.Stake
		}
	} else {
		d.MultiStake = q.Stake
	}
	return d, nil
}
