package torn

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// APIError is the {"error": {"code": n, "error": "text"}} body the Torn API
// returns with HTTP 200 when a request is rejected.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("torn api error %d: %s", e.Code, e.Message)
}

// Profile is the user/profile selection.
type Profile struct {
	Name   string `json:"name"`
	Level  int    `json:"level"`
	Status struct {
		Description string `json:"description"`
	} `json:"status"`
}

// InventoryItem is one entry of the user/inventory selection.
type InventoryItem struct {
	ID       string
	Name     string
	Quantity int64
}

// MarketItem is one entry of the market/items selection.
type MarketItem struct {
	ID          string
	Name        string
	MarketPrice decimal.Decimal // cheapest listing
	Value       decimal.Decimal // reference value of the item
}

// Stock is one instrument of the torn/stocks selection.
type Stock struct {
	ID           string
	Name         string
	Acronym      string
	CurrentPrice decimal.Decimal
	HighestPrice decimal.Decimal
}

// TravelItem is an item sold abroad, with its buy cost there and its market price at home.
type TravelItem struct {
	Country     string
	ID          string
	Name        string
	Cost        decimal.Decimal
	MarketPrice decimal.Decimal
}

type marketItemsResponse struct {
	Items map[string]struct {
		MarketPrice decimal.Decimal `json:"market_price"`
		Item        struct {
			Name  string          `json:"name"`
			Value decimal.Decimal `json:"value"`
		} `json:"item"`
	} `json:"items"`
}

type stocksResponse struct {
	Stocks map[string]struct {
		Name         string          `json:"name"`
		Acronym      string          `json:"acronym"`
		CurrentPrice decimal.Decimal `json:"current_price"`
		HighestPrice decimal.Decimal `json:"highest_price"`
	} `json:"stocks"`
}

type travelResponse struct {
	Travel map[string]map[string]struct {
		Name        string          `json:"name"`
		Cost        decimal.Decimal `json:"cost"`
		MarketPrice decimal.Decimal `json:"market_price"`
	} `json:"travel"`
}
