package scanner

import (
	"strings"

	"tornbot/pkg/torn"
)

func FromMarketItems(items []torn.MarketItem) []Candidate {
	out := make([]Candidate, 0, len(items))
	for _, it := range items {
		out = append(out, Candidate{ID: it.ID, Name: it.Name, Price: it.MarketPrice, Reference: it.Value})
	}
	return out
}

func FromStocks(stocks []torn.Stock) []Candidate {
	out := make([]Candidate, 0, len(stocks))
	for _, s := range stocks {
		out = append(out, Candidate{ID: s.ID, Name: s.Name, Price: s.CurrentPrice, Reference: s.HighestPrice})
	}
	return out
}

// FromTravel converts abroad items; a non-empty country keeps only that destination.
func FromTravel(items []torn.TravelItem, country string) []Candidate {
	country = strings.ToLower(strings.TrimSpace(country))

	out := make([]Candidate, 0, len(items))
	for _, it := range items {
		if country != "" && strings.ToLower(it.Country) != country {
			continue
		}
		out = append(out, Candidate{
			ID:        it.ID,
			Name:      it.Name,
			Group:     it.Country,
			Price:     it.Cost,
			Reference: it.MarketPrice,
		})
	}
	return out
}
