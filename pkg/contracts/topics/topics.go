package topics

const (
	// Catálogo
	CatalogUpdated = "catalog_updated"

	// Bets
	BetPlaced   = "bet_placed"
	BetsCleared = "bets_cleared"
	BetSettled  = "bet_settled"

	// DLQs
	BetSettledDLQ = "bet_settled_dlq"
)
