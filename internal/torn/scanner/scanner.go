// Package scanner ranks profit opportunities from game market data.
package scanner

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TopN is the number of opportunities returned by Scan.
const TopN = 5

// Candidate is one priced entry: a market item, a stock or a travel item.
type Candidate struct {
	ID        string
	Name      string
	Group     string          // travel country, empty otherwise
	Price     decimal.Decimal // what it costs now
	Reference decimal.Decimal // what it is worth (value, market price or historical high)
}

type Opportunity struct {
	Candidate
	Profit decimal.Decimal
}

// Predicate decides whether a candidate with a present price and reference qualifies.
type Predicate func(price, reference decimal.Decimal) bool

var dipRatio = decimal.NewFromFloat(0.85)

// BelowReference keeps entries priced strictly under their reference.
func BelowReference(price, reference decimal.Decimal) bool {
	return price.LessThan(reference)
}

// Dip keeps instruments trading strictly under 85% of their historical high.
func Dip(price, high decimal.Decimal) bool {
	return price.LessThan(high.Mul(dipRatio))
}

// Scan drops candidates with a zero price or reference and the ones rejected by keep,
// then returns at most TopN ordered by profit descending, ties by name.
func Scan(cands []Candidate, keep Predicate) []Opportunity {
	var out []Opportunity
	for _, c := range cands {
		if c.Price.IsZero() || c.Reference.IsZero() {
			continue
		}
		if !keep(c.Price, c.Reference) {
			continue
		}
		out = append(out, Opportunity{Candidate: c, Profit: c.Reference.Sub(c.Price)})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Profit.Cmp(out[j].Profit); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})

	if len(out) > TopN {
		out = out[:TopN]
	}
	return out
}
