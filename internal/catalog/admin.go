package catalog

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/radieske/pub-bets/internal/shared/money"
)

var (
	ErrMarketNotFound = errors.New("market not found")
	ErrLegNotFound    = errors.New("leg not found")
	ErrDuplicateID    = errors.New("duplicate id")
	ErrEmptyName      = errors.New("name required")
	ErrInvalidOdds    = errors.New("odds must be a positive number")
	ErrInvalidResult  = errors.New("result must be pending, won or lost")
)

// Todas as mutações abaixo trabalham numa cópia e devolvem o catálogo inteiro;
// quem chama persiste o documento de uma vez (last writer wins).

// LegPatch atualiza qualquer subconjunto dos campos mutáveis da leg
type LegPatch struct {
	Label  *string
	Odds   *float64
	Active *bool
	Result *Result
}

func SetEventTitle(c Catalog, title string) Catalog {
	out := c.Clone()
	out.EventTitle = strings.TrimSpace(title)
	return out
}

// AddMarket adiciona um mercado. IDs ausentes são gerados e o resultado das
// legs começa em pending
func AddMarket(c Catalog, m Market) (Catalog, Market, error) {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return c, Market{}, ErrEmptyName
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if _, ok := marketIndex(c, m.ID); ok {
		return c, Market{}, fmt.Errorf("%w: market %s", ErrDuplicateID, m.ID)
	}

	legs := make([]Leg, 0, len(m.Legs))
	seen := make(map[string]struct{})
	for _, l := range m.Legs {
		l, err := normalizeLeg(l)
		if err != nil {
			return c, Market{}, err
		}
		if _, dup := seen[l.ID]; dup {
			return c, Market{}, fmt.Errorf("%w: leg %s", ErrDuplicateID, l.ID)
		}
		if _, exists := FindLeg(c, l.ID); exists {
			return c, Market{}, fmt.Errorf("%w: leg %s", ErrDuplicateID, l.ID)
		}
		seen[l.ID] = struct{}{}
		legs = append(legs, l)
	}
	m.Legs = legs

	out := c.Clone()
	out.Markets = append(out.Markets, m)
	return out, m, nil
}

// RemoveMarket remove o mercado e retorna os IDs das legs removidas junto,
// pra que os betslips possam esquecê-las
func RemoveMarket(c Catalog, marketID string) (Catalog, []string, error) {
	i, ok := marketIndex(c, marketID)
	if !ok {
		return c, nil, ErrMarketNotFound
	}
	out := c.Clone()
	removed := make([]string, 0, len(out.Markets[i].Legs))
	for _, l := range out.Markets[i].Legs {
		removed = append(removed, l.ID)
	}
	out.Markets = append(out.Markets[:i], out.Markets[i+1:]...)
	return out, removed, nil
}

func RenameMarket(c Catalog, marketID, name string) (Catalog, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return c, ErrEmptyName
	}
	i, ok := marketIndex(c, marketID)
	if !ok {
		return c, ErrMarketNotFound
	}
	out := c.Clone()
	out.Markets[i].Name = name
	return out, nil
}

// SetMarketActive liga/desliga o mercado inteiro
func SetMarketActive(c Catalog, marketID string, active bool) (Catalog, error) {
	i, ok := marketIndex(c, marketID)
	if !ok {
		return c, ErrMarketNotFound
	}
	out := c.Clone()
	out.Markets[i].Active = active
	return out, nil
}

func AddLeg(c Catalog, marketID string, l Leg) (Catalog, Leg, error) {
	i, ok := marketIndex(c, marketID)
	if !ok {
		return c, Leg{}, ErrMarketNotFound
	}
	l, err := normalizeLeg(l)
	if err != nil {
		return c, Leg{}, err
	}
	if _, exists := FindLeg(c, l.ID); exists {
		return c, Leg{}, fmt.Errorf("%w: leg %s", ErrDuplicateID, l.ID)
	}
	out := c.Clone()
	out.Markets[i].Legs = append(out.Markets[i].Legs, l)
	return out, l, nil
}

// RemoveLeg remove a leg. Apostas já feitas mantêm o snapshot
func RemoveLeg(c Catalog, marketID, legID string) (Catalog, error) {
	i, j, err := legIndex(c, marketID, legID)
	if err != nil {
		return c, err
	}
	out := c.Clone()
	legs := out.Markets[i].Legs
	out.Markets[i].Legs = append(legs[:j], legs[j+1:]...)
	return out, nil
}

func UpdateLeg(c Catalog, marketID, legID string, p LegPatch) (Catalog, Leg, error) {
	i, j, err := legIndex(c, marketID, legID)
	if err != nil {
		return c, Leg{}, err
	}
	l := c.Markets[i].Legs[j]
	if p.Label != nil {
		label := strings.TrimSpace(*p.Label)
		if label == "" {
			return c, Leg{}, ErrEmptyName
		}
		l.Label = label
	}
	if p.Odds != nil {
		odds, err := validOdds(*p.Odds)
		if err != nil {
			return c, Leg{}, err
		}
		l.Odds = odds
	}
	if p.Active != nil {
		l.Active = *p.Active
	}
	if p.Result != nil {
		r, err := ParseResult(string(*p.Result))
		if err != nil {
			return c, Leg{}, err
		}
		l.Result = r
	}
	out := c.Clone()
	out.Markets[i].Legs[j] = l
	return out, l, nil
}

// ResetResults volta todas as legs para pending
func ResetResults(c Catalog) Catalog {
	out := c.Clone()
	for i := range out.Markets {
		for j := range out.Markets[i].Legs {
			out.Markets[i].Legs[j].Result = ResultPending
		}
	}
	return out
}

// Normalize preenche IDs/resultados faltantes de um catálogo vindo de arquivo
// seed e valida cada leg
func Normalize(c Catalog) (Catalog, error) {
	out := Catalog{EventTitle: strings.TrimSpace(c.EventTitle), Markets: []Market{}}
	for _, m := range c.Markets {
		var err error
		if out, _, err = AddMarket(out, m); err != nil {
			return c, fmt.Errorf("market %q: %w", m.Name, err)
		}
	}
	return out, nil
}

func normalizeLeg(l Leg) (Leg, error) {
	l.Label = strings.TrimSpace(l.Label)
	if l.Label == "" {
		return Leg{}, ErrEmptyName
	}
	odds, err := validOdds(l.Odds)
	if err != nil {
		return Leg{}, err
	}
	l.Odds = odds
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Result == "" {
		l.Result = ResultPending
	} else if l.Result, err = ParseResult(string(l.Result)); err != nil {
		return Leg{}, err
	}
	return l, nil
}

func validOdds(o float64) (float64, error) {
	if math.IsNaN(o) || math.IsInf(o, 0) {
		return 0, ErrInvalidOdds
	}
	o = money.Round2(o)
	if o <= 0 {
		return 0, ErrInvalidOdds
	}
	return o, nil
}

func marketIndex(c Catalog, marketID string) (int, bool) {
	for i, m := range c.Markets {
		if m.ID == marketID {
			return i, true
		}
	}
	return -1, false
}

func legIndex(c Catalog, marketID, legID string) (int, int, error) {
	i, ok := marketIndex(c, marketID)
	if !ok {
		return -1, -1, ErrMarketNotFound
	}
	for j, l := range c.Markets[i].Legs {
		if l.ID == legID {
			return i, j, nil
		}
	}
	return -1, -1, ErrLegNotFound
}
