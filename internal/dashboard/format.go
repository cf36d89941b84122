package dashboard

import (
	"fmt"
	"strconv"
)

// MarketView limits the market list to what is displayed.
type MarketView struct {
	Records []PriceRecord
	Limit   int
}

// Top returns at most Limit records in feed order. A zero limit shows all.
func (v MarketView) Top() []PriceRecord {
	if v.Limit <= 0 || len(v.Records) <= v.Limit {
		return v.Records
	}
	return v.Records[:v.Limit]
}

// FormatPrice renders a row as "<commodity> in <market>: KES <price> per <unit>".
func FormatPrice(r PriceRecord) string {
	return fmt.Sprintf("%s in %s: KES %s per %s", r.Commodity, r.Market, r.Price, r.Unit)
}

// FormatWeather renders the weather block, one line per value.
func FormatWeather(w Weather) []string {
	return []string{
		fmt.Sprintf("Temperature: %s°C", strconv.FormatFloat(w.Temperature, 'f', -1, 64)),
		fmt.Sprintf("Humidity: %s%%", strconv.FormatFloat(w.Humidity, 'f', -1, 64)),
		fmt.Sprintf("Description: %s", w.Description),
	}
}
