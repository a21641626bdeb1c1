package commands

import (
	"fmt"
	"strings"

	"tornbot/internal/torn/format"
	"tornbot/internal/torn/scanner"
	"tornbot/pkg/torn"
)

func renderProfile(body []byte, _ Request) (string, error) {
	p, err := torn.ParseProfile(body)
	if err != nil {
		return "", err
	}
	status := p.Status.Description
	if status == "" {
		status = "Unknown"
	}
	return fmt.Sprintf("**%s** | Level %d\nStatus: %s", p.Name, p.Level, status), nil
}

func renderInventory(body []byte, _ Request) (string, error) {
	items, err := torn.ParseInventory(body)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return msgItemsEmpty, nil
	}

	var sb strings.Builder
	sb.WriteString(msgItemsHeader)
	for _, it := range items {
		fmt.Fprintf(&sb, "- %s: %d\n", it.Name, it.Quantity)
	}
	return sb.String(), nil
}

func renderAdvise(body []byte, _ Request) (string, error) {
	items, err := torn.ParseMarketItems(body)
	if err != nil {
		return "", err
	}

	top := scanner.Scan(scanner.FromMarketItems(items), scanner.BelowReference)
	if len(top) == 0 {
		return msgAdviseNone, nil
	}

	var sb strings.Builder
	sb.WriteString(msgAdviseHeader)
	for _, o := range top {
		fmt.Fprintf(&sb, "- **%s**: Buy for $%s, Value $%s → Profit: $%s\n",
			o.Name, format.Money(o.Price), format.Money(o.Reference), format.Money(o.Profit))
	}
	return sb.String(), nil
}

func renderStockDips(body []byte, _ Request) (string, error) {
	stocks, err := torn.ParseStocks(body)
	if err != nil {
		return "", err
	}

	top := scanner.Scan(scanner.FromStocks(stocks), scanner.Dip)
	if len(top) == 0 {
		return msgStockNone, nil
	}

	var sb strings.Builder
	sb.WriteString(msgStockHeader)
	for _, o := range top {
		fmt.Fprintf(&sb, "- **%s**: $%s (was $%s) → Drop: $%s\n",
			o.Name, format.Money(o.Price), format.Money(o.Reference), format.Money(o.Profit))
	}
	return sb.String(), nil
}

// renderTravel honors an optional country argument.
func renderTravel(body []byte, req Request) (string, error) {
	items, err := torn.ParseTravel(body)
	if err != nil {
		return "", err
	}

	top := scanner.Scan(scanner.FromTravel(items, req.Arg), scanner.BelowReference)
	if len(top) == 0 {
		return msgTravelNone, nil
	}

	var sb strings.Builder
	sb.WriteString(msgTravelHeader)
	for _, o := range top {
		fmt.Fprintf(&sb, "- **%s** (%s): Buy for $%s, Sells for $%s → Profit: $%s\n",
			o.Name, countryName(o.Group), format.Money(o.Price), format.Money(o.Reference), format.Money(o.Profit))
	}
	return sb.String(), nil
}

// countryName turns feed keys like "south-africa" or "uae" into display names.
func countryName(key string) string {
	switch strings.ToLower(key) {
	case "uae":
		return "UAE"
	case "uk", "united-kingdom":
		return "United Kingdom"
	}
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
