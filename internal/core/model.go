package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ItemKind classifies a line item extracted from a chat turn.
type ItemKind string

const (
	KindSale   ItemKind = "sale"
	KindStock  ItemKind = "stock"
	KindCredit ItemKind = "credit"
)

// ItemAction says what a line item does to the stock ledger.
type ItemAction string

const (
	ActionUpsert ItemAction = "upsert"
	ActionDelete ItemAction = "delete"
)

// Sentinel values for credit entries with missing contact details.
const (
	UnknownCustomer = "unknown customer"
	UnknownPhone    = "N/A"
)

// StockItem is one distinct product known to the shop.
// Identity is the folded (trimmed, case-insensitive) form of Name;
// the stock ledger holds at most one item per folded name.
type StockItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// LineTotal returns Quantity × UnitPrice.
func (s StockItem) LineTotal() decimal.Decimal {
	return s.UnitPrice.Mul(decimal.NewFromInt(int64(s.Quantity)))
}

// CreditEntry is one extension of credit ("udhaar") to a customer.
// Entries are append-only within a session and never merge.
type CreditEntry struct {
	CustomerName string          `json:"customer_name"`
	Phone        string          `json:"phone"`
	Amount       decimal.Decimal `json:"amount"`
	Product      string          `json:"product"`
	CreatedAt    time.Time       `json:"created_at"`
}

// LineItem is one extracted intent from the interpreter.
// The jsonschema tags drive the structured-output schema sent to the model.
type LineItem struct {
	Name         string  `json:"name" jsonschema_description:"Raw product name only, cleaned of quantities and prices"`
	Quantity     int     `json:"quantity" jsonschema_description:"Unit count for this item; use 1 when not stated"`
	UnitPrice    float64 `json:"unit_price" jsonschema_description:"Unit price, or the credit amount for an udhaar item; 0 when not stated"`
	Kind         string  `json:"kind" jsonschema:"enum=sale,enum=stock,enum=credit" jsonschema_description:"What happened: a sale, a stock update, or credit (udhaar) given to a customer"`
	Action       string  `json:"action" jsonschema:"enum=upsert,enum=delete" jsonschema_description:"'upsert' to record or update, 'delete' to remove the item from stock"`
	CustomerName string  `json:"customer_name" jsonschema_description:"Customer who took the udhaar; empty for sale and stock items"`
	Phone        string  `json:"phone" jsonschema_description:"Customer phone number if mentioned; empty otherwise"`
}

// InterpretRequest is the input to the intent interpreter boundary.
type InterpretRequest struct {
	Utterance       string
	ShopName        string
	KnownStockNames []string
}

// InterpretResult is the structured answer of the intent interpreter.
type InterpretResult struct {
	ConfirmationMessage string     `json:"confirmation_message" jsonschema_description:"Short friendly reply to show the shopkeeper, in the language they used"`
	GenerateReport      bool       `json:"generate_report" jsonschema_description:"True when the user asks for a report, summary, hisab kitab, hisaab, analysis or totals"`
	HasError            bool       `json:"has_error" jsonschema_description:"True when the message could not be understood or a requested item is unavailable"`
	Items               []LineItem `json:"items" jsonschema_description:"Extracted sale, stock and credit line items, in the order they were mentioned"`
}

// FoldName returns the canonical identity key for a product name.
func FoldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Normalize cleans up model output dealing with common formatting issues.
// Missing or malformed fields degrade to usable defaults; nothing fails.
func (r *InterpretResult) Normalize() {
	r.ConfirmationMessage = strings.TrimSpace(r.ConfirmationMessage)
	for i := range r.Items {
		r.Items[i].normalize()
	}
}

func (li *LineItem) normalize() {
	li.Name = strings.TrimSpace(li.Name)
	li.CustomerName = strings.TrimSpace(li.CustomerName)
	li.Phone = strings.TrimSpace(li.Phone)

	kind := strings.ToLower(strings.TrimSpace(li.Kind))
	// Older model drafts answer "udhaar" for credit items.
	if kind == "udhaar" {
		kind = string(KindCredit)
	}
	li.Kind = kind

	action := strings.ToLower(strings.TrimSpace(li.Action))
	if action == "" {
		action = string(ActionUpsert)
	}
	li.Action = action

	if li.Quantity < 0 {
		li.Quantity = 0
	}
	if li.UnitPrice < 0 {
		li.UnitPrice = 0
	}
}

// kind returns the folded ItemKind even when the caller skipped Normalize.
func (li LineItem) kind() ItemKind {
	k := strings.ToLower(strings.TrimSpace(li.Kind))
	if k == "udhaar" {
		return KindCredit
	}
	return ItemKind(k)
}

func (li LineItem) action() ItemAction {
	a := strings.ToLower(strings.TrimSpace(li.Action))
	if a == string(ActionDelete) {
		return ActionDelete
	}
	return ActionUpsert
}
