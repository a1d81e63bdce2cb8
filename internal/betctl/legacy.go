package betctl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/radieske/pub-bets/internal/bets"
	"github.com/radieske/pub-bets/internal/store"
)

// legacyBet é o documento de aposta dos exports antigos. O timestamp vem em
// formatos variados e o nome do campo mudou com o tempo
type legacyBet struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	Legs        []bets.LegSnapshot `json:"legs"`
	Mode        string             `json:"mode"`
	MultiStake  float64            `json:"multiStake"`
	Stake       float64            `json:"stake"`
	StakesByLeg map[string]float64 `json:"stakesByLeg"`
	PlacedAt    json.RawMessage    `json:"placedAt"`
	CreatedAt   json.RawMessage    `json:"createdAt"`
}

// ParseLegacy lê um export antigo: um array de apostas ou {"bets": [...]}.
// Modo vazio vale multi; id vazio ganha um uuid
func ParseLegacy(r io.Reader) ([]bets.Bet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)

	var docs []legacyBet
	if len(data) > 0 && data[0] == '{' {
		var wrapped struct {
			Bets []legacyBet `json:"bets"`
		}
		err = json.Unmarshal(data, &wrapped)
		docs = wrapped.Bets
	} else {
		err = json.Unmarshal(data, &docs)
	}
	if err != nil {
		return nil, fmt.Errorf("decode legacy export: %w", err)
	}

	out := make([]bets.Bet, 0, len(docs))
	for i, d := range docs {
		b, err := d.bet()
		if err != nil {
			return nil, fmt.Errorf("bet #%d (%s): %w", i, d.ID, err)
		}
		out = append(out, b)
	}
	return out, nil
}

func (d legacyBet) bet() (bets.Bet, error) {
	raw := d.PlacedAt
	if len(raw) == 0 {
		raw = d.CreatedAt
	}
	placed, err := store.ParseTimestamp(raw)
	if err != nil {
		return bets.Bet{}, err
	}

	mode := bets.ModeMulti
	if strings.TrimSpace(d.Mode) != "" {
		if mode, err = bets.ParseMode(d.Mode); err != nil {
			return bets.Bet{}, err
		}
	}

	b := bets.Bet{
		ID:       d.ID,
		PlacedAt: placed,
		Draft: bets.Draft{
			Bettor:      bets.NewBettor(d.Name, d.Email),
			Legs:        d.Legs,
			Mode:        mode,
			StakesByLeg: d.StakesByLeg,
		},
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Legs == nil {
		b.Legs = []bets.LegSnapshot{}
	}
	if mode == bets.ModeMulti {
		b.MultiStake = d.MultiStake
		if b.MultiStake == 0 {
			b.MultiStake = d.Stake
		}
		b.StakesByLeg = nil
	}
	return b, nil
}
