package report

import (
	"fmt"
	"strings"
	"time"

	"dukaan-guru/internal/core"
)

// ShareText builds the WhatsApp-ready summary of the current ledgers:
// the shop header, both aggregates, and a short line per entry.
func ShareText(shopName string, stock []core.StockItem, credits []core.CreditEntry, now time.Time) string {
	if shopName == "" {
		shopName = "Meri Dukaan"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*%s* — Hisab Kitab (%s)\n\n", shopName, now.Format("02 Jan 2006"))
	fmt.Fprintf(&b, "Total Stock Value: Rs %s\n", core.TotalStockValue(stock).String())
	fmt.Fprintf(&b, "Udhaar Outstanding: Rs %s\n", core.TotalCreditOutstanding(credits).String())

	if len(stock) > 0 {
		b.WriteString("\n*Stock*\n")
		for _, item := range stock {
			fmt.Fprintf(&b, "- %s: %d x Rs %s = Rs %s\n",
				item.Name, item.Quantity, item.UnitPrice.String(), item.LineTotal().String())
		}
	}

	if len(credits) > 0 {
		b.WriteString("\n*Udhaar*\n")
		for _, entry := range credits {
			fmt.Fprintf(&b, "- %s (%s): Rs %s — %s, %s\n",
				entry.CustomerName, entry.Phone, entry.Amount.String(),
				entry.Product, entry.CreatedAt.Format("02 Jan"))
		}
	}

	b.WriteString("\nDukaan Guru ke saath banaya gaya.")
	return b.String()
}
