// Package catalog modela o documento compartilhado de mercados e legs e os
// helpers de leitura usados pelo betslip e pela liquidação.
package catalog

import (
	"fmt"
	"iter"
	"strings"
)

// Result é o resultado de uma leg, definido pelo admin
type Result string

const (
	ResultPending Result = "pending"
	ResultWon     Result = "won"
	ResultLost    Result = "lost"
)

// ParseResult aceita pending, won ou lost (case-insensitive)
func ParseResult(s string) (Result, error) {
	switch r := Result(strings.ToLower(strings.TrimSpace(s))); r {
	case ResultPending, ResultWon, ResultLost:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidResult, s)
}

// Leg é uma seleção apostável
type Leg struct {
	ID     string  `json:"id" yaml:"id"`
	Label  string  `json:"label" yaml:"label"`
	Odds   float64 `json:"odds" yaml:"odds"`
	Active bool    `json:"active" yaml:"active"`
	Result Result  `json:"result" yaml:"result"`
}

// Market agrupa legs. Mercado inativo esconde todas as suas legs
type Market struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Active bool   `json:"active" yaml:"active"`
	Legs   []Leg  `json:"legs" yaml:"legs"`
}

// Catalog é o documento raiz compartilhado entre todos os clientes
type Catalog struct {
	EventTitle string   `json:"eventTitle" yaml:"eventTitle"`
	Markets    []Market `json:"markets" yaml:"markets"`
}

// FlatLeg é uma leg anotada com o mercado pai
type FlatLeg struct {
	Leg
	MarketID     string `json:"marketId"`
	MarketName   string `json:"marketName"`
	MarketActive bool   `json:"marketActive"`
}

func (f FlatLeg) Available() bool { return f.Active && f.MarketActive }

// Default é o documento semeado quando ainda não existe nenhum salvo
func Default(title string) Catalog {
	return Catalog{EventTitle: title, Markets: []Market{}}
}

// Clone retorna uma cópia profunda
func (c Catalog) Clone() Catalog {
	out := Catalog{EventTitle: c.EventTitle, Markets: make([]Market, len(c.Markets))}
	for i, m := range c.Markets {
		m.Legs = append([]Leg(nil), m.Legs...)
		if m.Legs == nil {
			m.Legs = []Leg{}
		}
		out.Markets[i] = m
	}
	return out
}

// Flatten percorre todas as legs na ordem de exibição
func Flatten(c Catalog) iter.Seq[FlatLeg] {
	return func(yield func(FlatLeg) bool) {
		for _, m := range c.Markets {
			for _, l := range m.Legs {
				if !yield(FlatLeg{Leg: l, MarketID: m.ID, MarketName: m.Name, MarketActive: m.Active}) {
					return
				}
			}
		}
	}
}

// AvailableLegs filtra legs ativas de mercados ativos
func AvailableLegs(c Catalog) iter.Seq[FlatLeg] {
	return func(yield func(FlatLeg) bool) {
		for f := range Flatten(c) {
			if f.Available() && !yield(f) {
				return
			}
		}
	}
}

func FindLeg(c Catalog, legID string) (FlatLeg, bool) {
	for f := range Flatten(c) {
		if f.ID == legID {
			return f, true
		}
	}
	return FlatLeg{}, false
}

// ResultOf retorna o resultado atual da leg; pending se ela não existe mais
// (ex.: removida depois da aposta)
func ResultOf(c Catalog, legID string) Result {
	if f, ok := FindLeg(c, legID); ok && f.Result != "" {
		return f.Result
	}
	return ResultPending
}

// Lookup indexa o catálogo uma vez e devolve um ResultOf para liquidar várias
// apostas contra o mesmo snapshot
func Lookup(c Catalog) func(legID string) Result {
	idx := make(map[string]Result)
	for f := range Flatten(c) {
		if f.Result != "" {
			idx[f.ID] = f.Result
		}
	}
	return func(legID string) Result {
		if r, ok := idx[legID]; ok {
			return r
		}
		return ResultPending
	}
}
