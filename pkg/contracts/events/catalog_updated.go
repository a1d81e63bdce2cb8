package events

// Evento publicado a cada mutação admin salva no catálogo.
type CatalogUpdated struct {
	Op       string `json:"op"` // ex.: "add_market", "update_leg", "reset_results"
	MarketID string `json:"market_id,omitempty"`
	LegID    string `json:"leg_id,omitempty"`
	TsUnixMs int64  `json:"ts_unix_ms"`
}
