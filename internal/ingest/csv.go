package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/savegress/stockflow/pkg/models"
)

// CSV loading for the one-shot CLI mode. Input files are whatever the
// warehouse systems export, so the loader tolerates preamble rows above the
// header and resolves columns by case-insensitive substring, the same way
// operators eyeball them.

const headerScanLimit = 30

// table is a parsed CSV with resolved header positions.
type table struct {
	headers []string
	rows    [][]string
}

func loadTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	headerIdx := -1
	limit := min(len(records), headerScanLimit)
	for i := 0; i < limit; i++ {
		joined := strings.ToUpper(strings.Join(records[i], " "))
		if strings.Contains(joined, "SKU") {
			headerIdx = i
			break
		}
	}
	if headerIdx == -1 {
		return nil, fmt.Errorf("%s: no header row with a SKU column in first %d rows", path, headerScanLimit)
	}

	headers := make([]string, len(records[headerIdx]))
	for i, h := range records[headerIdx] {
		headers[i] = strings.TrimSpace(h)
	}
	return &table{headers: headers, rows: records[headerIdx+1:]}, nil
}

// column finds the first header containing any of the keys, skipping headers
// that contain an exclude term. Returns -1 when nothing matches.
func (t *table) column(exclude string, keys ...string) int {
	for i, h := range t.headers {
		u := strings.ToUpper(h)
		if exclude != "" && strings.Contains(u, strings.ToUpper(exclude)) {
			continue
		}
		for _, k := range keys {
			if strings.Contains(u, strings.ToUpper(k)) {
				return i
			}
		}
	}
	return -1
}

func (t *table) cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// LoadStockCSV reads a stock table. Requires SKU, warehouse and quantity
// columns; sub-item and zone columns are optional.
func LoadStockCSV(path string) ([]models.RawStockRow, error) {
	t, err := loadTable(path)
	if err != nil {
		return nil, err
	}

	sku := t.column("FNSKU", "SKU")
	subItem := t.column("", "FNSKU")
	warehouse := t.column("", "WAREHOUSE", "LOCATION")
	zone := t.column("", "ZONE", "BIN")
	qty := t.column("", "AVAILABLE")
	if qty == -1 {
		qty = t.column("", "QTY", "QUANTITY", "STOCK")
	}
	if sku == -1 || warehouse == -1 || qty == -1 {
		return nil, fmt.Errorf("stock table %s: %w (need SKU, warehouse, quantity)", path, ErrMissingColumn)
	}

	rows := make([]models.RawStockRow, 0, len(t.rows))
	for _, r := range t.rows {
		if isBlank(r) {
			continue
		}
		rows = append(rows, models.RawStockRow{
			ItemID:    t.cell(r, sku),
			SubItemID: t.cell(r, subItem),
			Location:  t.cell(r, warehouse),
			Zone:      t.cell(r, zone),
			Quantity:  t.cell(r, qty),
		})
	}
	return rows, nil
}

// LoadOrderCSV reads a purchase-order or pickup-plan table. Requires SKU and
// quantity columns; prefers an outstanding/unreceived quantity column when
// one exists.
func LoadOrderCSV(path string) ([]models.RawOrderRow, error) {
	t, err := loadTable(path)
	if err != nil {
		return nil, err
	}

	sku := t.column("FNSKU", "SKU")
	subItem := t.column("", "FNSKU")
	qty := t.column("", "OUTSTANDING", "UNRECEIVED")
	if qty == -1 {
		qty = t.column("", "QTY", "QUANTITY")
	}
	requester := t.column("", "REQUESTER", "BUYER")
	if sku == -1 || qty == -1 {
		return nil, fmt.Errorf("order table %s: %w (need SKU, quantity)", path, ErrMissingColumn)
	}

	rows := make([]models.RawOrderRow, 0, len(t.rows))
	for _, r := range t.rows {
		if isBlank(r) {
			continue
		}
		rows = append(rows, models.RawOrderRow{
			ItemID:    t.cell(r, sku),
			SubItemID: t.cell(r, subItem),
			Quantity:  t.cell(r, qty),
			Requester: t.cell(r, requester),
		})
	}
	return rows, nil
}

// LoadDemandCSV reads a demand table. Requires SKU and quantity columns;
// every unrecognized column is carried through unchanged on output rows.
func LoadDemandCSV(path string) ([]models.RawDemandRow, error) {
	t, err := loadTable(path)
	if err != nil {
		return nil, err
	}

	sku := t.column("FNSKU", "SKU")
	subItem := t.column("", "FNSKU")
	market := t.column("", "MARKET", "COUNTRY")
	tag := t.column("", "TAG")
	qty := t.column("", "QTY", "QUANTITY")
	if sku == -1 || qty == -1 {
		return nil, fmt.Errorf("demand table %s: %w (need SKU, quantity)", path, ErrMissingColumn)
	}

	known := map[int]bool{sku: true, subItem: true, market: true, tag: true, qty: true}

	rows := make([]models.RawDemandRow, 0, len(t.rows))
	for _, r := range t.rows {
		if isBlank(r) {
			continue
		}
		var passthrough map[string]string
		for i, h := range t.headers {
			if known[i] || h == "" {
				continue
			}
			if passthrough == nil {
				passthrough = make(map[string]string)
			}
			passthrough[h] = t.cell(r, i)
		}
		rows = append(rows, models.RawDemandRow{
			Tag:         t.cell(r, tag),
			Market:      t.cell(r, market),
			ItemID:      t.cell(r, sku),
			SubItemID:   t.cell(r, subItem),
			Quantity:    t.cell(r, qty),
			Passthrough: passthrough,
		})
	}
	return rows, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
