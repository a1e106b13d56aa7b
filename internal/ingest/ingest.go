package ingest

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/savegress/stockflow/internal/config"
	"github.com/savegress/stockflow/internal/inventory"
	"github.com/savegress/stockflow/pkg/models"
)

// Builder turns raw input rows into a fresh inventory pool and validated
// demand lines, recording every excluded row as a data-quality event.
// One builder serves one run.
type Builder struct {
	cfg    *config.Config
	events []models.DataQualityEvent
}

func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{cfg: cfg}
}

// Events returns the data-quality log accumulated so far.
func (b *Builder) Events() []models.DataQualityEvent {
	return b.events
}

// BuildPool constructs the inventory pool from stock, purchase-order and
// pickup-plan rows. Deny-listed or malformed rows are logged and skipped;
// nothing here aborts the run.
func (b *Builder) BuildPool(stock []models.RawStockRow, purchase, plans []models.RawOrderRow) *inventory.Pool {
	pool := inventory.NewPool()

	for _, row := range stock {
		item := strings.TrimSpace(row.ItemID)
		location := strings.TrimSpace(row.Location)

		if match := denyMatch(location, b.cfg.Classification.DenyLocations); match != "" {
			b.reject("stock", item, "deny-listed location", location)
			continue
		}
		if item == "" {
			b.reject("stock", "", "missing item id", location)
			continue
		}
		qty := ParseQuantity(row.Quantity)
		if qty <= 0 {
			b.reject("stock", item, "non-positive quantity", row.Quantity)
			continue
		}

		pool.AddStock(&models.StockBatch{
			ItemID:    item,
			SubItemID: strings.TrimSpace(row.SubItemID),
			Class:     Classify(location, b.cfg.Classification.Rules),
			Quantity:  qty,
			Location:  location,
			Zone:      strings.TrimSpace(row.Zone),
		})
	}

	b.addOrders(pool, purchase, models.OrderTypePurchase, true)
	b.addOrders(pool, plans, models.OrderTypePickupPlan, false)

	if b.cfg.Allocation.PickupPlanMode == config.PickupPlanNetted {
		pool.NetPickupAgainstPurchase()
	}
	return pool
}

// checkRequester applies the requester deny-list; only purchase orders carry
// an organizational exception list.
func (b *Builder) addOrders(pool *inventory.Pool, rows []models.RawOrderRow, orderType models.OrderType, checkRequester bool) {
	table := string(orderType)
	for _, row := range rows {
		item := strings.TrimSpace(row.ItemID)

		if checkRequester {
			if match := denyMatch(row.Requester, b.cfg.Classification.DenyRequesters); match != "" {
				b.reject(table, item, "deny-listed requester", strings.TrimSpace(row.Requester))
				continue
			}
		}
		if item == "" {
			b.reject(table, "", "missing item id", "")
			continue
		}
		qty := ParseQuantity(row.Quantity)
		if qty <= 0 {
			b.reject(table, item, "non-positive quantity", row.Quantity)
			continue
		}

		pool.AddOrder(&models.OpenOrderBatch{
			ItemID:    item,
			SubItemID: strings.TrimSpace(row.SubItemID),
			Quantity:  qty,
			Type:      orderType,
		})
	}
}

// BuildDemand validates demand rows and tags each line with its market and
// demand-class split. Row ids follow input order.
func (b *Builder) BuildDemand(table string, rows []models.RawDemandRow) []models.DemandLine {
	lines := make([]models.DemandLine, 0, len(rows))
	for i, row := range rows {
		item := strings.TrimSpace(row.ItemID)
		if item == "" {
			b.reject(table, "", "missing item id", "")
			continue
		}
		qty := ParseQuantity(row.Quantity)
		if qty <= 0 {
			b.reject(table, item, "non-positive quantity", row.Quantity)
			continue
		}

		lines = append(lines, models.DemandLine{
			RowID:       i,
			ItemID:      item,
			SubItemID:   strings.TrimSpace(row.SubItemID),
			Quantity:    qty,
			Market:      strings.TrimSpace(row.Market),
			Tag:         strings.TrimSpace(row.Tag),
			Export:      containsAny(row.Market, b.cfg.Demand.ExportMarkers),
			NewDemand:   containsAny(row.Tag, b.cfg.Demand.NewMarkers),
			Passthrough: row.Passthrough,
		})
	}
	return lines
}

func (b *Builder) reject(table, item, reason, detail string) {
	b.events = append(b.events, models.DataQualityEvent{
		Table:  table,
		ItemID: item,
		Reason: reason,
		Detail: detail,
	})
}

// Classify maps a raw location name to a class via the ordered rule table,
// first match wins. Unmatched names land in the inert "other" class.
func Classify(location string, rules []config.ClassificationRule) models.LocationClass {
	name := strings.ToUpper(location)
	for _, rule := range rules {
		if strings.Contains(name, strings.ToUpper(rule.Pattern)) {
			return models.LocationClass(rule.Class)
		}
	}
	return models.ClassOther
}

// ParseQuantity parses a raw cell value like "1,234", " 50 " or "12.0" into
// integer units, rounding half away from zero. Anything unparseable counts
// as zero and gets rejected by the caller's non-positive check.
func ParseQuantity(raw string) int {
	s := strings.NewReplacer(",", "", " ", "").Replace(strings.TrimSpace(raw))
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return int(d.Round(0).IntPart())
}

func denyMatch(value string, denyList []string) string {
	v := strings.ToUpper(value)
	for _, deny := range denyList {
		if deny == "" {
			continue
		}
		if strings.Contains(v, strings.ToUpper(deny)) {
			return deny
		}
	}
	return ""
}

func containsAny(value string, markers []string) bool {
	v := strings.ToUpper(value)
	for _, m := range markers {
		if m != "" && strings.Contains(v, strings.ToUpper(m)) {
			return true
		}
	}
	return false
}

// ErrMissingColumn signals a structurally unusable input table; see csv.go.
var ErrMissingColumn = errors.New("missing required column")
