package core_test

import (
	"testing"
	"time"

	"dukaan-guru/internal/core"

	"github.com/shopspring/decimal"
)

var now = time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)

func stockItem(name string, qty int, price int64) core.StockItem {
	return core.StockItem{Name: name, Quantity: qty, UnitPrice: decimal.NewFromInt(price)}
}

func TestReconcile_NewStockItem(t *testing.T) {
	// Scenario: empty ledger, one stock upsert.
	batch := []core.LineItem{{Name: "Pepsi", Quantity: 20, UnitPrice: 50, Kind: "stock", Action: "upsert"}}

	stock, credits, created := core.Reconcile(nil, nil, batch, now)

	if len(stock) != 1 || len(credits) != 0 || len(created) != 0 {
		t.Fatalf("unexpected ledger sizes: stock=%d credits=%d created=%d", len(stock), len(credits), len(created))
	}
	if stock[0].Name != "Pepsi" || stock[0].Quantity != 20 || !stock[0].UnitPrice.Equal(decimal.NewFromInt(50)) {
		t.Errorf("unexpected stock item: %+v", stock[0])
	}
	if total := core.TotalStockValue(stock); !total.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("total stock value = %s, want 1000", total)
	}
}

func TestReconcile_SaleMatchesCaseInsensitive(t *testing.T) {
	ledger := []core.StockItem{stockItem("Pepsi", 20, 50)}
	batch := []core.LineItem{{Name: "pepsi", Quantity: 5, UnitPrice: 0, Kind: "sale", Action: "upsert"}}

	stock, _, _ := core.Reconcile(ledger, nil, batch, now)

	if len(stock) != 1 {
		t.Fatalf("expected 1 stock item, got %d", len(stock))
	}
	if stock[0].Name != "Pepsi" || stock[0].Quantity != 15 {
		t.Errorf("sale not applied: %+v", stock[0])
	}
	if !stock[0].UnitPrice.Equal(decimal.NewFromInt(50)) {
		t.Errorf("zero price must preserve the existing price, got %s", stock[0].UnitPrice)
	}
}

func TestReconcile_SaleFloorsAtZero(t *testing.T) {
	ledger := []core.StockItem{stockItem("Pepsi", 3, 50)}
	batch := []core.LineItem{{Name: "Pepsi", Quantity: 10, Kind: "sale", Action: "upsert"}}

	stock, _, _ := core.Reconcile(ledger, nil, batch, now)

	if stock[0].Quantity != 0 {
		t.Errorf("quantity = %d, want 0 (floored, never negative)", stock[0].Quantity)
	}
	if !stock[0].UnitPrice.Equal(decimal.NewFromInt(50)) {
		t.Errorf("price changed on sale: %s", stock[0].UnitPrice)
	}
}

func TestReconcile_StockReplacesNotAdds(t *testing.T) {
	ledger := []core.StockItem{stockItem("Lays", 7, 30)}
	batch := []core.LineItem{{Name: "lays", Quantity: 4, UnitPrice: 35, Kind: "stock", Action: "upsert"}}

	stock, _, _ := core.Reconcile(ledger, nil, batch, now)

	if stock[0].Quantity != 4 {
		t.Errorf("quantity = %d, want 4 (absolute replace)", stock[0].Quantity)
	}
	if !stock[0].UnitPrice.Equal(decimal.NewFromInt(35)) {
		t.Errorf("positive price must replace, got %s", stock[0].UnitPrice)
	}
}

func TestReconcile_UnknownSaleIsNoOp(t *testing.T) {
	ledger := []core.StockItem{stockItem("Pepsi", 20, 50)}
	batch := []core.LineItem{{Name: "Fanta", Quantity: 2, UnitPrice: 60, Kind: "sale", Action: "upsert"}}

	stock, _, _ := core.Reconcile(ledger, nil, batch, now)

	if len(stock) != 1 || stock[0].Name != "Pepsi" || stock[0].Quantity != 20 {
		t.Errorf("selling an unknown item must change nothing: %+v", stock)
	}
}

func TestReconcile_DeleteIsIdempotent(t *testing.T) {
	ledger := []core.StockItem{stockItem("Pepsi", 20, 50), stockItem("Lays", 5, 30)}

	tests := []struct {
		name    string
		target  string
		wantLen int
	}{
		{"existing item removed", "pepsi", 1},
		{"absent item is a no-op", "Fanta", 2},
		{"empty name skipped", "   ", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch := []core.LineItem{{Name: tt.target, Kind: "stock", Action: "delete"}}
			stock, _, _ := core.Reconcile(ledger, nil, batch, now)
			if len(stock) != tt.wantLen {
				t.Errorf("stock len = %d, want %d", len(stock), tt.wantLen)
			}
		})
	}
}

func TestReconcile_NewItemsInsertAtFront(t *testing.T) {
	ledger := []core.StockItem{stockItem("Pepsi", 20, 50)}
	batch := []core.LineItem{{Name: "Lays", Quantity: 10, UnitPrice: 30, Kind: "stock", Action: "upsert"}}

	stock, _, _ := core.Reconcile(ledger, nil, batch, now)

	if len(stock) != 2 || stock[0].Name != "Lays" || stock[1].Name != "Pepsi" {
		t.Errorf("new items must be placed at the front: %+v", stock)
	}
}

func TestReconcile_CreditAppendOnly(t *testing.T) {
	// The same credit applied twice yields two entries; stock is untouched.
	ledger := []core.StockItem{stockItem("Pepsi", 20, 50)}
	batch := []core.LineItem{{
		Name: "Pepsi", Quantity: 1, UnitPrice: 150,
		Kind: "credit", Action: "upsert",
		CustomerName: "Hamza", Phone: "0300-1234567",
	}}

	stock, credits, created := core.Reconcile(ledger, nil, batch, now)
	stock, credits, created = core.Reconcile(stock, credits, batch, now)

	if len(created) != 1 {
		t.Fatalf("second batch created %d entries, want 1", len(created))
	}
	if len(credits) != 2 {
		t.Fatalf("credit register has %d entries, want 2", len(credits))
	}
	if total := core.TotalCreditOutstanding(credits); !total.Equal(decimal.NewFromInt(300)) {
		t.Errorf("total credit = %s, want 300", total)
	}
	if len(stock) != 1 || stock[0].Quantity != 20 {
		t.Errorf("credit items must never touch the stock ledger: %+v", stock)
	}
}

func TestReconcile_CreditBatchOrderPreserved(t *testing.T) {
	existing := []core.CreditEntry{{CustomerName: "Old", Amount: decimal.NewFromInt(10), CreatedAt: now.Add(-time.Hour)}}
	batch := []core.LineItem{
		{Name: "Chai", UnitPrice: 100, Kind: "credit", CustomerName: "Asif"},
		{Name: "Biscuit", UnitPrice: 40, Kind: "udhaar", CustomerName: "Bilal"},
	}

	_, credits, created := core.Reconcile(nil, existing, batch, now)

	if len(created) != 2 {
		t.Fatalf("created %d entries, want 2 (udhaar folds to credit)", len(created))
	}
	want := []string{"Asif", "Bilal", "Old"}
	for i, name := range want {
		if credits[i].CustomerName != name {
			t.Errorf("credits[%d].CustomerName = %q, want %q", i, credits[i].CustomerName, name)
		}
	}
	if credits[0].CreatedAt != now {
		t.Errorf("created entries must be stamped with now")
	}
}

func TestReconcile_CreditDefaultsSentinels(t *testing.T) {
	batch := []core.LineItem{{Name: "Atta", UnitPrice: 250, Kind: "credit"}}

	_, credits, _ := core.Reconcile(nil, nil, batch, now)

	if credits[0].CustomerName != core.UnknownCustomer {
		t.Errorf("customer = %q, want sentinel %q", credits[0].CustomerName, core.UnknownCustomer)
	}
	if credits[0].Phone != core.UnknownPhone {
		t.Errorf("phone = %q, want sentinel %q", credits[0].Phone, core.UnknownPhone)
	}
	if credits[0].Product != "Atta" {
		t.Errorf("product = %q, want Atta", credits[0].Product)
	}
}

func TestReconcile_InputsNotMutated(t *testing.T) {
	ledger := []core.StockItem{stockItem("Pepsi", 20, 50)}
	batch := []core.LineItem{{Name: "Pepsi", Quantity: 5, Kind: "sale", Action: "upsert"}}

	core.Reconcile(ledger, nil, batch, now)

	if ledger[0].Quantity != 20 {
		t.Errorf("Reconcile mutated its input ledger: %+v", ledger[0])
	}
}

func TestTotalStockValue_Empty(t *testing.T) {
	if total := core.TotalStockValue(nil); !total.IsZero() {
		t.Errorf("empty ledger total = %s, want 0", total)
	}
	if total := core.TotalCreditOutstanding(nil); !total.IsZero() {
		t.Errorf("empty register total = %s, want 0", total)
	}
}
