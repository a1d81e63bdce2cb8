package dto

import (
	"github.com/radieske/pub-bets/internal/bets"
	"github.com/radieske/pub-bets/internal/betslip"
	"github.com/radieske/pub-bets/internal/catalog"
)

// SlipRequest é o estado do betslip mantido pelo cliente
type SlipRequest struct {
	Mode       string             `json:"mode"` // "multi" | "singles"
	LegIDs     []string           `json:"legIds"`
	MultiStake float64            `json:"multiStake"`
	Stakes     map[string]float64 `json:"stakes"` // legId -> stake em singles
}

// Slip reconstrói o betslip do lado do servidor. Modo vazio vale multi
func (r SlipRequest) Slip() (*betslip.Slip, error) {
	s := betslip.New()
	if r.Mode != "" {
		m, err := bets.ParseMode(r.Mode)
		if err != nil {
			return nil, err
		}
		s.SetMode(m)
	}
	s.Select(r.LegIDs...)
	s.SetMultiStake(r.MultiStake)
	for id, v := range r.Stakes {
		if s.Has(id) {
			s.SetSingleStake(id, v)
		}
	}
	return s, nil
}

type PlaceBetRequest struct {
	SlipRequest
	Name  string `json:"name"`
	Email string `json:"email"`
}

type TitleRequest struct {
	EventTitle string `json:"eventTitle"`
}

type MarketRequest struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Active *bool        `json:"active"` // default true
	Legs   []LegRequest `json:"legs"`
}

func (r MarketRequest) Market() catalog.Market {
	m := catalog.Market{ID: r.ID, Name: r.Name, Active: r.Active == nil || *r.Active, Legs: []catalog.Leg{}}
	for _, l := range r.Legs {
		m.Legs = append(m.Legs, l.Leg())
	}
	return m
}

type MarketPatchRequest struct {
	Name   *string `json:"name"`
	Active *bool   `json:"active"`
}

type LegRequest struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Odds   float64 `json:"odds"`
	Active *bool   `json:"active"` // default true
}

func (r LegRequest) Leg() catalog.Leg {
	return catalog.Leg{ID: r.ID, Label: r.Label, Odds: r.Odds, Active: r.Active == nil || *r.Active}
}

type LegPatchRequest struct {
	Label  *string  `json:"label"`
	Odds   *float64 `json:"odds"`
	Active *bool    `json:"active"`
	Result *string  `json:"result"`
}

func (r LegPatchRequest) Patch() catalog.LegPatch {
	p := catalog.LegPatch{Label: r.Label, Odds: r.Odds, Active: r.Active}
	if r.Result != nil {
		res := catalog.Result(*r.Result)
		p.Result = &res
	}
	return p
}

type ScoreRequest struct {
	Team      string  `json:"team"`
	Hole      int     `json:"hole"`
	Sips      float64 `json:"sips"`
	Penalties float64 `json:"penalties"`
}

type ConfirmScoreRequest struct {
	Team string `json:"team"`
	Hole int    `json:"hole"`
}
