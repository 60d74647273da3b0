// Package money holds the minor-unit representation used for every stored
// amount and the conversion to cedis used at API and gateway boundaries.
package money

import (
	"github.com/shopspring/decimal"
)

// PesewasPerCedi is the minor-unit factor.
const PesewasPerCedi = 100

// Pesewas is an amount in minor currency units.
type Pesewas int64

// GHS converts to major units without rounding.
func (p Pesewas) GHS() GHS {
	return GHS{d: decimal.New(int64(p), -2)}
}

// Times multiplies by a quantity.
func (p Pesewas) Times(n int) Pesewas { return p * Pesewas(n) }

// GHS is an amount in cedis. It marshals as a bare JSON number with two
// decimal places so gateway payloads and API responses stay numeric.
type GHS struct {
	d decimal.Decimal
}

// FromGHS parses a cedi amount as reported by the provider.
func FromGHS(f float64) GHS { return GHS{d: decimal.NewFromFloat(f)} }

func FromDecimal(d decimal.Decimal) GHS { return GHS{d: d} }

func (g GHS) Decimal() decimal.Decimal { return g.d }

// Pesewas converts back to minor units, rounding half away from zero.
func (g GHS) Pesewas() Pesewas {
	return Pesewas(g.d.Shift(2).Round(0).IntPart())
}

func (g GHS) String() string { return g.d.StringFixed(2) }

func (g GHS) Equal(o GHS) bool { return g.d.Equal(o.d) }

func (g GHS) MarshalJSON() ([]byte, error) {
	return []byte(g.d.StringFixed(2)), nil
}

func (g *GHS) UnmarshalJSON(b []byte) error {
	return g.d.UnmarshalJSON(b)
}
