package repl

import (
	"fmt"
	"strings"

	"dukaan-guru/internal/app"
	"dukaan-guru/internal/core"
)

func printMessages(messages []core.ChatMessage) {
	for _, msg := range messages {
		prefix := "You"
		if msg.Role == core.RoleAssistant {
			prefix = "Guru"
		}
		if msg.IsError {
			prefix += " (!)"
		}
		fmt.Printf("%s: %s\n", prefix, msg.Text)
	}
}

func printStock(snap *app.LedgerSnapshot) {
	if len(snap.Stock) == 0 {
		fmt.Println("No items in stock.")
		return
	}
	fmt.Printf("%-30s %8s %12s %12s\n", "Item", "Qty", "Price", "Line Total")
	fmt.Println(strings.Repeat("-", 66))
	for _, item := range snap.Stock {
		fmt.Printf("%-30s %8d %12s %12s\n",
			item.Name, item.Quantity, item.UnitPrice.String(), item.LineTotal().String())
	}
	fmt.Println(strings.Repeat("-", 66))
	fmt.Printf("Total Stock Value: Rs %s\n", snap.TotalStockValue.String())
}

func printCredits(snap *app.LedgerSnapshot) {
	if len(snap.Credits) == 0 {
		fmt.Println("No udhaar entries.")
		return
	}
	fmt.Printf("%-22s %-16s %-20s %10s\n", "Customer", "Phone", "Product", "Amount")
	fmt.Println(strings.Repeat("-", 72))
	for _, entry := range snap.Credits {
		fmt.Printf("%-22s %-16s %-20s %10s\n",
			entry.CustomerName, entry.Phone, entry.Product, entry.Amount.String())
	}
	fmt.Println(strings.Repeat("-", 72))
	fmt.Printf("Udhaar Outstanding: Rs %s\n", snap.TotalCreditOutstanding.String())
}

func printHelp() {
	fmt.Println(`Commands:
  /stock           show the stock ledger
  /udhaar          show the credit register
  /report          show the shareable summary
  /share <phone>   send the summary over WhatsApp
  /help            this help
  /exit            quit

Anything else is sent to the assistant, e.g.
  "5 pepsi bik gaye" or "Hamza ko 150 ka udhaar diya"`)
}
