// Package golf mantém o placar do pub-golf que roda junto com o board de
// apostas: times lançam goles e penalidades por buraco e o admin confirma.
package golf

import (
	"errors"
	"sort"
	"strings"

	"github.com/radieske/pub-bets/internal/shared/money"
)

const (
	Holes        = 9
	MaxSips      = 20
	MaxPenalties = 10
)

var (
	ErrTeamRequired = errors.New("team is required")
	ErrInvalidHole  = errors.New("hole must be between 1 and 9")
	ErrNotFound     = errors.New("score not found")
)

// Score é o cartão de um time em um buraco
type Score struct {
	Team      string  `json:"team"`
	Hole      int     `json:"hole"`
	Sips      float64 `json:"sips"`
	Penalties float64 `json:"penalties"`
	Confirmed bool    `json:"confirmed"`
}

// Normalize limpa o nome do time, valida o buraco e limita as contagens
func (s Score) Normalize() (Score, error) {
	s.Team = strings.TrimSpace(s.Team)
	if s.Team == "" {
		return Score{}, ErrTeamRequired
	}
	if s.Hole < 1 || s.Hole > Holes {
		return Score{}, ErrInvalidHole
	}
	s.Sips = money.Clamp(money.Round2(s.Sips), 0, MaxSips)
	s.Penalties = money.Clamp(money.Round2(s.Penalties), 0, MaxPenalties)
	return s, nil
}

// Total é a pontuação do buraco (menor é melhor)
func (s Score) Total() float64 {
	return money.Round2(money.Clamp(s.Sips, 0, MaxSips) + money.Clamp(s.Penalties, 0, MaxPenalties))
}

func TeamKey(team string) string { return strings.ToLower(strings.TrimSpace(team)) }

type Standing struct {
	Team  string  `json:"team"`
	Total float64 `json:"total"`
	Holes int     `json:"holes"`
}

// Ladder soma os scores confirmados por time, menor primeiro, empate por nome
func Ladder(scores []Score) []Standing {
	byTeam := make(map[string]*Standing)
	totals := make(map[string][]float64)
	for _, s := range scores {
		if !s.Confirmed {
			continue
		}
		k := TeamKey(s.Team)
		st, ok := byTeam[k]
		if !ok {
			st = &Standing{Team: strings.TrimSpace(s.Team)}
			byTeam[k] = st
		}
		st.Holes++
		totals[k] = append(totals[k], s.Total())
	}

	out := make([]Standing, 0, len(byTeam))
	for k, st := range byTeam {
		st.Total = money.SumRounded(totals[k]...)
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total < out[j].Total
		}
		return TeamKey(out[i].Team) < TeamKey(out[j].Team)
	})
	return out
}
