package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatOrderOrg renders an OrderRecord as an Org-mode block, with the facts
// in a PROPERTIES drawer so they stay searchable.
func FormatOrderOrg(o OrderRecord) string {
	heading := fmt.Sprintf("** %s %s %s (%s)", strings.ToUpper(string(o.Status)), strings.ToUpper(string(o.Side)), o.Symbol, shortID(o.ID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":ORDER_ID: %s\n", o.ID))
	b.WriteString(fmt.Sprintf(":TIME: %s\n", o.Time.UTC().Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf(":SYMBOL: %s\n", o.Symbol))
	b.WriteString(fmt.Sprintf(":SIDE: %s\n", o.Side))
	b.WriteString(fmt.Sprintf(":VOLUME: %.2f\n", o.Volume))
	b.WriteString(fmt.Sprintf(":STOP_LOSS: %s\n", orgPrice(o.StopLoss)))
	b.WriteString(fmt.Sprintf(":TAKE_PROFIT: %s\n", orgPrice(o.TakeProfit)))
	if o.Status == StatusFilled {
		b.WriteString(fmt.Sprintf(":FILL_PRICE: %.5f\n", o.FillPrice))
	}
	b.WriteString(fmt.Sprintf(":STATUS: %s\n", o.Status))
	b.WriteString(":END:\n")
	if o.Detail != "" {
		b.WriteString("\n")
		b.WriteString(o.Detail)
		b.WriteString("\n")
	}

	return b.String()
}

// FormatOrdersOrg renders a day report: a summary table followed by one block
// per order.
func FormatOrdersOrg(title string, orders []OrderRecord) string {
	s := Summarize(orders)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("* %s\n", title))
	b.WriteString("| filled | failed | buys | sells |\n")
	b.WriteString("|--------+--------+------+-------|\n")
	b.WriteString(fmt.Sprintf("| %6d | %6d | %4d | %5d |\n", s.Filled, s.Failed, s.Buys, s.Sells))
	for _, o := range orders {
		b.WriteString("\n")
		b.WriteString(FormatOrderOrg(o))
	}
	return b.String()
}

// FormatEquityOrg renders equity snapshots as an Org table with times in loc.
func FormatEquityOrg(snaps []EquitySnapshot, loc *time.Location) string {
	var b strings.Builder
	b.WriteString("| time | balance | equity |\n")
	b.WriteString("|------+---------+--------|\n")
	for _, s := range snaps {
		b.WriteString(fmt.Sprintf("| %s | %.2f | %.2f |\n", s.Time.In(loc).Format("2006-01-02 15:04:05"), s.Balance, s.Equity))
	}
	return b.String()
}

func orgPrice(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.5f", *p)
}

// shortID keeps the random tail of a ULID.
func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[len(full)-8:]
}
