package events

// Evento publicado pelo bet-service logo após gravar a aposta.
type BetPlaced struct {
	BetID     string   `json:"bet_id"`
	BettorKey string   `json:"bettor_key"`
	Mode      string   `json:"mode"` // "multi" | "singles"
	LegIDs    []string `json:"leg_ids"`
	Stake     float64  `json:"stake"`
	TsUnixMs  int64    `json:"ts_unix_ms"`
}
