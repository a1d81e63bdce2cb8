// Package money concentra a aritmética em centavos usada pelo betslip, pela
// liquidação e pelo placar do pub-golf. Todo resultado passa por
// shopspring/decimal e é arredondado em 2 casas.
package money

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	// DefaultMaxPayout é o teto de retorno aplicado a cada leg e à odd combinada da múltipla
	DefaultMaxPayout = 200.0

	// OddsEpsilon evita divisão por odd zero no StakeCap
	OddsEpsilon = 1e-6
)

var hundred = decimal.NewFromInt(100)
var cent = decimal.New(1, -2)

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

// dec converte float pra decimal; NaN/Inf viram zero
func dec(x float64) decimal.Decimal {
	if !finite(x) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(x)
}

// Round2 arredonda para centavos. NaN e ±Inf retornam 0
func Round2(x float64) float64 {
	if !finite(x) {
		return 0
	}
	return dec(x).Round(2).InexactFloat64()
}

// CombineOdds multiplica as odds. Zero ou não-finito conta como 1 e lista vazia
// retorna exatamente 1
func CombineOdds(odds ...float64) float64 {
	product := decimal.NewFromInt(1)
	for _, o := range odds {
		if !finite(o) || o == 0 {
			continue
		}
		product = product.Mul(dec(o))
	}
	return product.Round(2).InexactFloat64()
}

// Payout retorna stake*odds em centavos. Stake zero paga zero; odd zero vale 1
func Payout(stake, odds float64) float64 {
	if !finite(stake) || stake == 0 {
		return 0
	}
	if !finite(odds) || odds == 0 {
		odds = 1
	}
	return dec(stake).Mul(dec(odds)).Round(2).InexactFloat64()
}

// StakeCap é o maior valor em centavos cujo retorno não passa de maxPayout.
// Sempre arredonda pra baixo
func StakeCap(odds, maxPayout float64) float64 {
	if !finite(maxPayout) || maxPayout <= 0 {
		return 0
	}
	if !finite(odds) || odds < OddsEpsilon {
		odds = OddsEpsilon
	}
	limit := dec(maxPayout)
	o := dec(odds)

	c := limit.Div(o).Mul(hundred).Floor().Div(hundred)
	// Div trabalha com 16 casas; se arredondou pra cima lá, passa 1 centavo
	if c.Mul(o).GreaterThan(limit) {
		c = c.Sub(cent)
	}
	if c.IsNegative() {
		return 0
	}
	return c.InexactFloat64()
}

// Clamp limita x a [lo, hi]. Não-finito retorna lo
func Clamp(x, lo, hi float64) float64 {
	if !finite(x) || x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// SumRounded arredonda cada valor antes de somar (soma dos arredondados),
// batendo com os valores por linha que o apostador vê
func SumRounded(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(dec(v).Round(2))
	}
	return total.InexactFloat64()
}
