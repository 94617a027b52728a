package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/andresuchdata/stockpilot/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}

// ParseProductsCSV reads product records from a CSV export. Column names are
// matched loosely ("Incoming Stock", "incoming_stock" and "incomingStock" are
// equivalent). An empty price cell leaves the price unset.
func ParseProductsCSV(r io.Reader) ([]domain.ProductRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	return parseProducts(reader.Read)
}

// ParseProductRows reads product records from rows that were already split
// into cells, such as a spreadsheet. The first row is the header.
func ParseProductRows(rows [][]string) ([]domain.ProductRecord, error) {
	i := 0
	return parseProducts(func() ([]string, error) {
		if i >= len(rows) {
			return nil, io.EOF
		}
		i++
		return rows[i-1], nil
	})
}

func parseProducts(next func() ([]string, error)) ([]domain.ProductRecord, error) {
	header, err := next()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	colIndex := func(names ...string) int {
		targets := make(map[string]struct{}, len(names))
		for _, name := range names {
			targets[normalizeColumnName(name)] = struct{}{}
		}
		for i, h := range header {
			if _, ok := targets[normalizeColumnName(h)]; ok {
				return i
			}
		}
		return -1
	}

	idxID := colIndex("id", "sku", "product_id")
	idxScope := colIndex("scope", "shop", "store", "shop_id")
	idxName := colIndex("name", "product name", "nama")
	idxPrice := colIndex("price", "harga")
	idxQty := colIndex("quantity", "stock", "stok", "qty")
	idxIncoming := colIndex("incoming_stock", "incoming", "sedang_po")

	if idxID < 0 {
		return nil, errors.New("header has no id column")
	}

	products := make([]domain.ProductRecord, 0)
	line := 1
	for {
		record, err := next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line+1, err)
		}
		line++

		get := func(idx int) string {
			if idx < 0 || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		parseInt := func(idx int, column string) (int, error) {
			v := strings.ReplaceAll(get(idx), ",", "")
			if v == "" {
				return 0, nil
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return 0, fmt.Errorf("line %d: invalid %s %q: %w", line, column, v, err)
			}
			return n, nil
		}

		p := domain.ProductRecord{
			ID:    get(idxID),
			Scope: get(idxScope),
			Name:  get(idxName),
		}
		if p.ID == "" {
			continue
		}

		if raw := strings.ReplaceAll(get(idxPrice), ",", ""); raw != "" {
			price, err := decimal.NewFromString(raw)
			if err != nil {
				// unreadable prices fall back to the analyzer default
				log.Warn().
					Int("line", line).
					Str("product_id", p.ID).
					Str("price", raw).
					Msg("product import: invalid price, using default")
			} else {
				p.Price = &price
			}
		}
		if p.Quantity, err = parseInt(idxQty, "quantity"); err != nil {
			return nil, err
		}
		if p.IncomingStock, err = parseInt(idxIncoming, "incoming stock"); err != nil {
			return nil, err
		}

		products = append(products, p)
	}

	return products, nil
}

// WriteProductsCSV writes products in the layout ParseProductsCSV reads.
func WriteProductsCSV(w io.Writer, products []domain.ProductRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "scope", "name", "price", "quantity", "incoming_stock"}); err != nil {
		return err
	}
	for _, p := range products {
		price := ""
		if p.Price != nil {
			price = p.Price.String()
		}
		rec := []string{p.ID, p.Scope, p.Name, price, strconv.Itoa(p.Quantity), strconv.Itoa(p.IncomingStock)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
