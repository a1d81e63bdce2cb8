package events

import "time"

// Evento emitido pelo settlement-worker quando o status de uma aposta muda.
type BetSettled struct {
	BetID           string    `json:"betId"`
	BettorKey       string    `json:"bettorKey"`
	OldStatus       string    `json:"oldStatus,omitempty"` // vazio na primeira avaliação
	Status          string    `json:"status"`              // "Pending" | "Won" | "Lost" | "Mixed"
	PotentialPayout float64   `json:"potentialPayout"`
	Ts              time.Time `json:"ts"`
}
