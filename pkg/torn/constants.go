package torn

import "fmt"

// Endpoint is one category/selection pair of the Torn API,
// requested as GET <base>/<category>/?selections=<selection>&key=<key>.
type Endpoint struct {
	Category  string
	Selection string
}

var (
	EndpointProfile     = Endpoint{Category: "user", Selection: "profile"}
	EndpointInventory   = Endpoint{Category: "user", Selection: "inventory"}
	EndpointMarketItems = Endpoint{Category: "market", Selection: "items"}
	EndpointStocks      = Endpoint{Category: "torn", Selection: "stocks"}
	EndpointTravel      = Endpoint{Category: "market", Selection: "travel"}
)

func (e Endpoint) String() string {
	return fmt.Sprintf("%s/%s", e.Category, e.Selection)
}

// IsValid reports whether both parts are set.
func (e Endpoint) IsValid() bool {
	return e.Category != "" && e.Selection != ""
}
