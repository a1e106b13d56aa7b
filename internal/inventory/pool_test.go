package inventory

import (
	"testing"

	"github.com/savegress/stockflow/pkg/models"
)

func stock(item, sub string, class models.LocationClass, qty int, location string) *models.StockBatch {
	return &models.StockBatch{
		ItemID:    item,
		SubItemID: sub,
		Class:     class,
		Quantity:  qty,
		Location:  location,
	}
}

func order(item, sub string, orderType models.OrderType, qty int) *models.OpenOrderBatch {
	return &models.OpenOrderBatch{
		ItemID:    item,
		SubItemID: sub,
		Quantity:  qty,
		Type:      orderType,
	}
}

func TestPool_Snapshot(t *testing.T) {
	p := NewPool()
	p.AddStock(stock("A1", "X1", models.ClassDomestic, 100, "Main WH"))
	p.AddStock(stock("A1", "X2", models.ClassDomestic, 30, "Main WH"))
	p.AddStock(stock("A1", "X1", models.ClassCloud, 20, "Cloud East"))
	p.AddStock(stock("A1", "", models.ClassOther, 15, "Mystery"))
	p.AddOrder(order("A1", "X1", models.OrderTypePurchase, 40))
	p.AddOrder(order("A1", "X1", models.OrderTypePickupPlan, 10))

	snap := p.Snapshot("A1")

	if snap["domestic_wh"] != 130 {
		t.Errorf("domestic = %d, want 130", snap["domestic_wh"])
	}
	if snap["cloud_wh"] != 20 {
		t.Errorf("cloud = %d, want 20", snap["cloud_wh"])
	}
	if snap["purchase_order"] != 40 {
		t.Errorf("purchase_order = %d, want 40", snap["purchase_order"])
	}
	if snap["pickup_plan"] != 10 {
		t.Errorf("pickup_plan = %d, want 10", snap["pickup_plan"])
	}
	if _, ok := snap["other"]; ok {
		t.Error("snapshot should not expose the inert other class")
	}
}

func TestPool_Snapshot_Idempotent(t *testing.T) {
	p := NewPool()
	p.AddStock(stock("A1", "X1", models.ClassDomestic, 100, "Main WH"))

	first := p.Snapshot("A1")
	second := p.Snapshot("A1")

	if first["domestic_wh"] != second["domestic_wh"] {
		t.Errorf("snapshot changed between reads: %d vs %d", first["domestic_wh"], second["domestic_wh"])
	}
	if p.TotalSupply("A1") != p.TotalSupply("A1") {
		t.Error("TotalSupply changed between reads")
	}
}

func TestPool_TotalSupply_IncludesOtherAndOrders(t *testing.T) {
	p := NewPool()
	p.AddStock(stock("A1", "X1", models.ClassDomestic, 50, "Main WH"))
	p.AddStock(stock("A1", "X1", models.ClassOther, 25, "Mystery"))
	p.AddOrder(order("A1", "X1", models.OrderTypePurchase, 40))
	p.AddOrder(order("A1", "", models.OrderTypePickupPlan, 5))

	if got := p.TotalSupply("A1"); got != 120 {
		t.Errorf("TotalSupply = %d, want 120", got)
	}
}

func TestPool_TotalSupply_UnknownItem(t *testing.T) {
	p := NewPool()

	if got := p.TotalSupply("NOPE"); got != 0 {
		t.Errorf("TotalSupply = %d, want 0", got)
	}
}

func TestPool_Items(t *testing.T) {
	p := NewPool()
	p.AddStock(stock("A1", "X1", models.ClassDomestic, 10, "Main WH"))
	p.AddOrder(order("B2", "", models.OrderTypePurchase, 5))

	items := p.Items()
	if len(items) != 2 {
		t.Fatalf("Items returned %d entries, want 2", len(items))
	}
}

func TestPool_NetPickupAgainstPurchase(t *testing.T) {
	p := NewPool()
	p.AddOrder(order("A1", "X1", models.OrderTypePurchase, 100))
	p.AddOrder(order("A1", "X1", models.OrderTypePickupPlan, 40))

	p.NetPickupAgainstPurchase()

	snap := p.Snapshot("A1")
	if snap["purchase_order"] != 60 {
		t.Errorf("purchase_order = %d, want 60 after netting", snap["purchase_order"])
	}
	if snap["pickup_plan"] != 40 {
		t.Errorf("pickup_plan = %d, want 40 (plan side is untouched)", snap["pickup_plan"])
	}
}

func TestPool_NetPickupAgainstPurchase_ClampsAtZero(t *testing.T) {
	p := NewPool()
	p.AddOrder(order("A1", "X1", models.OrderTypePurchase, 30))
	p.AddOrder(order("A1", "X1", models.OrderTypePickupPlan, 50))

	p.NetPickupAgainstPurchase()

	snap := p.Snapshot("A1")
	if snap["purchase_order"] != 0 {
		t.Errorf("purchase_order = %d, want 0", snap["purchase_order"])
	}
}

func TestPool_NetPickupAgainstPurchase_DifferentSubItems(t *testing.T) {
	p := NewPool()
	p.AddOrder(order("A1", "X1", models.OrderTypePurchase, 100))
	p.AddOrder(order("A1", "X2", models.OrderTypePickupPlan, 40))

	p.NetPickupAgainstPurchase()

	// Netting only pairs matching sub-items.
	snap := p.Snapshot("A1")
	if snap["purchase_order"] != 100 {
		t.Errorf("purchase_order = %d, want 100", snap["purchase_order"])
	}
}
