package core

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// Fragments are separated by newlines, commas, or the spoken
	// conjunctions "and" / "aur".
	fragmentSep = regexp.MustCompile(`(?i)\r?\n|,|\band\b|\baur\b`)

	// "<quantity> <name> <price>" — an integer, free text, a trailing integer.
	stockPattern = regexp.MustCompile(`^(\d+)\s+(.+?)\s+(\d+)$`)
)

// ParseInitialStock turns the free-text setup inventory blob into a batch of
// stock line items for Reconcile. This is a best-effort heuristic, not a
// grammar: fragments that do not match the quantity/name/price shape become
// a single unit with no price, so no input is ever rejected. Mis-splits
// (names with embedded digits) stay correctable through later chat turns.
func ParseInitialStock(blob string) []LineItem {
	var items []LineItem
	for _, frag := range fragmentSep.Split(blob, -1) {
		frag = strings.TrimSpace(frag)
		if frag == "" {
			continue
		}

		item := LineItem{
			Name:      frag,
			Quantity:  1,
			UnitPrice: 0,
			Kind:      string(KindStock),
			Action:    string(ActionUpsert),
		}
		if m := stockPattern.FindStringSubmatch(frag); m != nil {
			qty, _ := strconv.Atoi(m[1])
			price, _ := strconv.Atoi(m[3])
			item.Name = strings.TrimSpace(m[2])
			item.Quantity = qty
			item.UnitPrice = float64(price)
		}
		items = append(items, item)
	}
	return items
}
