package ingest

import (
	"testing"

	"github.com/savegress/stockflow/internal/config"
	"github.com/savegress/stockflow/pkg/models"
)

func testConfig() *config.Config {
	return config.LoadFromEnv()
}

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"50", 50},
		{" 50 ", 50},
		{"1,234", 1234},
		{"12.0", 12},
		{"12.6", 13},
		{"-3", -3},
		{"", 0},
		{"n/a", 0},
		{"1 200", 1200},
	}
	for _, c := range cases {
		if got := ParseQuantity(c.in); got != c.want {
			t.Errorf("ParseQuantity(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	rules := []config.ClassificationRule{
		{Pattern: "CLOUD", Class: "cloud_wh"},
		{Pattern: "C", Class: "domestic_wh"}, // would also match, but comes later
	}

	if got := Classify("Cloud East", rules); got != models.ClassCloud {
		t.Errorf("Classify = %s, want cloud_wh", got)
	}
}

func TestClassify_UnknownIsOther(t *testing.T) {
	cfg := testConfig()

	if got := Classify("Warehouse 51", cfg.Classification.Rules); got != models.ClassOther {
		t.Errorf("Classify = %s, want other", got)
	}
}

func TestBuildPool_DenyListedLocation(t *testing.T) {
	cfg := testConfig()
	cfg.Classification.DenyLocations = []string{"MARKETPLACE"}
	b := NewBuilder(cfg)

	pool := b.BuildPool([]models.RawStockRow{
		{ItemID: "A1", SubItemID: "X1", Location: "ThirdPartyMarketplace-East", Quantity: "500"},
		{ItemID: "A1", SubItemID: "X1", Location: "Main WH", Quantity: "40"},
	}, nil, nil)

	if got := pool.TotalSupply("A1"); got != 40 {
		t.Errorf("TotalSupply = %d, want 40 (deny-listed row contributes zero)", got)
	}
	events := b.Events()
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].Reason != "deny-listed location" {
		t.Errorf("reason = %q", events[0].Reason)
	}
}

func TestBuildPool_RejectsMissingItemAndBadQuantity(t *testing.T) {
	cfg := testConfig()
	b := NewBuilder(cfg)

	pool := b.BuildPool([]models.RawStockRow{
		{ItemID: "", Location: "Main WH", Quantity: "10"},
		{ItemID: "A1", Location: "Main WH", Quantity: "0"},
		{ItemID: "A1", Location: "Main WH", Quantity: "junk"},
		{ItemID: "A1", Location: "Main WH", Quantity: "25"},
	}, nil, nil)

	if got := pool.TotalSupply("A1"); got != 25 {
		t.Errorf("TotalSupply = %d, want 25", got)
	}
	if got := len(b.Events()); got != 3 {
		t.Errorf("events = %d, want 3", got)
	}
}

func TestBuildPool_DenyListedRequester(t *testing.T) {
	cfg := testConfig()
	cfg.Classification.DenyRequesters = []string{"Smith"}
	b := NewBuilder(cfg)

	pool := b.BuildPool(nil, []models.RawOrderRow{
		{ItemID: "A1", Quantity: "100", Requester: "J. Smith"},
		{ItemID: "A1", Quantity: "30", Requester: "R. Jones"},
	}, nil)

	if got := pool.TotalSupply("A1"); got != 30 {
		t.Errorf("TotalSupply = %d, want 30", got)
	}
}

func TestBuildPool_RequesterDenyListSkipsPickupPlans(t *testing.T) {
	cfg := testConfig()
	cfg.Classification.DenyRequesters = []string{"Smith"}
	b := NewBuilder(cfg)

	// The requester exception list applies to purchase orders only.
	pool := b.BuildPool(nil, nil, []models.RawOrderRow{
		{ItemID: "A1", Quantity: "100", Requester: "J. Smith"},
	})

	if got := pool.TotalSupply("A1"); got != 100 {
		t.Errorf("TotalSupply = %d, want 100", got)
	}
}

func TestBuildPool_NettedMode(t *testing.T) {
	cfg := testConfig()
	cfg.Allocation.PickupPlanMode = config.PickupPlanNetted
	b := NewBuilder(cfg)

	pool := b.BuildPool(nil,
		[]models.RawOrderRow{{ItemID: "A1", SubItemID: "X1", Quantity: "100"}},
		[]models.RawOrderRow{{ItemID: "A1", SubItemID: "X1", Quantity: "40"}},
	)

	snap := pool.Snapshot("A1")
	if snap["purchase_order"] != 60 {
		t.Errorf("purchase_order = %d, want 60", snap["purchase_order"])
	}
	if snap["pickup_plan"] != 40 {
		t.Errorf("pickup_plan = %d, want 40", snap["pickup_plan"])
	}
}

func TestBuildDemand_MarkersAndValidation(t *testing.T) {
	cfg := testConfig()
	b := NewBuilder(cfg)

	lines := b.BuildDemand("demand", []models.RawDemandRow{
		{Tag: "new-launch", Market: "US", ItemID: "A1", SubItemID: "X1", Quantity: "30"},
		{Tag: "restock", Market: "Germany", ItemID: "A1", Quantity: "20"},
		{Tag: "new", Market: "domestic", ItemID: "B2", Quantity: "0"},
		{Tag: "", Market: "", ItemID: "", Quantity: "5"},
	})

	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if !lines[0].Export || !lines[0].NewDemand {
		t.Errorf("line 0: Export=%v NewDemand=%v, want true/true", lines[0].Export, lines[0].NewDemand)
	}
	if lines[1].Export || lines[1].NewDemand {
		t.Errorf("line 1: Export=%v NewDemand=%v, want false/false", lines[1].Export, lines[1].NewDemand)
	}
	if lines[0].RowID != 0 || lines[1].RowID != 1 {
		t.Errorf("row ids = %d,%d, want 0,1", lines[0].RowID, lines[1].RowID)
	}
	if got := len(b.Events()); got != 2 {
		t.Errorf("events = %d, want 2", got)
	}
}
