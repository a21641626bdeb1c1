package broadcast

import (
	"fmt"

	"tornbot/internal/torn/format"
	"tornbot/pkg/torn"

	"github.com/shopspring/decimal"
)

// Render builds the message text of one instrument.
// Without a previous price the indicator depends on firstObservation.
func Render(s torn.Stock, prev decimal.Decimal, hasPrev bool, epsilon decimal.Decimal, firstObservation string) string {
	text := fmt.Sprintf("**%s** (%s): $%s", s.Name, s.Acronym, format.Money(s.CurrentPrice))

	if !hasPrev {
		if firstObservation == FirstObservationPlaceholder {
			return text + " 📈 " + format.Signed(decimal.Zero)
		}
		return text
	}

	delta := s.CurrentPrice.Sub(prev)
	if delta.Abs().LessThanOrEqual(epsilon) {
		return text
	}
	if delta.IsPositive() {
		return text + " 📈 " + format.Signed(delta)
	}
	return text + " 📉 " + format.Signed(delta)
}
