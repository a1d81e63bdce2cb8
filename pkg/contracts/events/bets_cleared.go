package events

// Evento publicado após apagar (ou arquivar) todas as apostas.
type BetsCleared struct {
	Archived bool  `json:"archived"`
	Count    int64 `json:"count"`
	TsUnixMs int64 `json:"ts_unix_ms"`
}
