package metrics

import "github.com/prometheus/client_golang/prometheus"

// BetService agrupa os contadores do bet-service
type BetService struct {
	BetsPlaced       prometheus.Counter
	BetsRejected     *prometheus.CounterVec // reason
	CatalogMutations *prometheus.CounterVec // op
	PublishErrors    *prometheus.CounterVec // topic
}

func NewBetService(reg prometheus.Registerer) *BetService {
	m := &BetService{
		BetsPlaced:       prometheus.NewCounter(prometheus.CounterOpts{Name: "bets_placed_total", Help: "apostas gravadas"}),
		BetsRejected:     prometheus.NewCounterVec(prometheus.CounterOpts{Name: "bets_rejected_total", Help: "apostas recusadas por motivo"}, []string{"reason"}),
		CatalogMutations: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "catalog_mutations_total", Help: "mutações admin salvas no catálogo"}, []string{"op"}),
		PublishErrors:    prometheus.NewCounterVec(prometheus.CounterOpts{Name: "kafka_publish_errors_total", Help: "falhas ao publicar eventos"}, []string{"topic"}),
	}
	reg.MustRegister(m.BetsPlaced, m.BetsRejected, m.CatalogMutations, m.PublishErrors)
	return m
}

// Settlement agrupa as métricas do settlement-worker
type Settlement struct {
	Consumed      *prometheus.CounterVec // topic
	Transitions   *prometheus.CounterVec // status
	Errors        *prometheus.CounterVec // stage
	OpenLiability prometheus.Gauge
}

func NewSettlement(reg prometheus.Registerer) *Settlement {
	m := &Settlement{
		Consumed:      prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_messages_consumed_total", Help: "mensagens consumidas"}, []string{"topic"}),
		Transitions:   prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_transitions_total", Help: "mudanças de status por status novo"}, []string{"status"}),
		Errors:        prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_errors_total", Help: "erros por estágio"}, []string{"stage"}),
		OpenLiability: prometheus.NewGauge(prometheus.GaugeOpts{Name: "settlement_open_liability", Help: "soma do retorno potencial das apostas pendentes"}),
	}
	reg.MustRegister(m.Consumed, m.Transitions, m.Errors, m.OpenLiability)
	return m
}
