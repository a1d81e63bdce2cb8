package dto

import (
	"github.com/radieske/pub-bets/internal/bets"
)

type PlaceBetResponse struct {
	BetID      string          `json:"betId"`
	Settlement bets.Settlement `json:"settlement"`
	Message    string          `json:"message,omitempty"`
}

// BetView é a aposta com a liquidação calculada contra o catálogo atual
type BetView struct {
	bets.Bet
	Settlement bets.Settlement `json:"settlement"`
}

type BetsResponse struct {
	Bets []BetView `json:"bets"`
}

type RemovedResponse struct {
	Removed    int64    `json:"removed"`
	ArchiveKey string   `json:"archiveKey,omitempty"`
	LegIDs     []string `json:"legIds,omitempty"`
	Message    string   `json:"message,omitempty"`
}
