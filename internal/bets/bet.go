// Package bets contém o registro imutável da aposta e o motor de liquidação
// que avalia a aposta contra os resultados atuais das legs.
package bets

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Mode define como as legs da aposta se combinam
type Mode string

const (
	ModeMulti   Mode = "multi"
	ModeSingles Mode = "singles"
)

var ErrInvalidMode = errors.New("mode must be multi or singles")

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeMulti, ModeSingles:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// LegSnapshot congela a leg (e a odd) no momento da aposta
type LegSnapshot struct {
	LegID      string  `json:"legId"`
	Label      string  `json:"label"`
	MarketName string  `json:"marketName"`
	Odds       float64 `json:"odds"`
}

// Bettor identifica quem apostou. Key vem de MakeKey
type Bettor struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Key   string `json:"key"`
}

func NewBettor(name, email string) Bettor {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	return Bettor{Name: name, Email: email, Key: MakeKey(name, email)}
}

// Draft é a aposta antes do store atribuir id e timestamp
type Draft struct {
	Bettor      Bettor             `json:"bettor"`
	Legs        []LegSnapshot      `json:"legs"`
	Mode        Mode               `json:"mode"`
	MultiStake  float64            `json:"multiStake,omitempty"`
	StakesByLeg map[string]float64 `json:"stakesByLeg,omitempty"`
}

// Bet é a aposta persistida. Seq é o desempate atribuído pelo store para
// apostas com o mesmo PlacedAt
type Bet struct {
	ID       string    `json:"id"`
	PlacedAt time.Time `json:"placedAt"`
	Seq      int64     `json:"seq"`
	Draft
}

// SortRecentFirst ordena por PlacedAt desc, depois Seq desc, depois ID desc
func SortRecentFirst(list []Bet) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.PlacedAt.Equal(b.PlacedAt) {
			return a.PlacedAt.After(b.PlacedAt)
		}
		if a.Seq != b.Seq {
			return a.Seq > b.Seq
		}
		return a.ID > b.ID
	})
}

func FilterByKey(list []Bet, key string) []Bet {
	out := make([]Bet, 0, len(list))
	for _, b := range list {
		if b.Bettor.Key == key {
			out = append(out, b)
		}
	}
	return out
}
