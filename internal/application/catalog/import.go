package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nillpakhi2003-droid/habib-furniture/internal/observability"
	"github.com/shopspring/decimal"
)

// Expected CSV header for bulk product import.
var importHeader = []string{"name", "slug", "description", "category", "price", "discount_price", "stock"}

var ErrBadImportHeader = errors.New("catalog: csv header must be " + strings.Join(importHeader, ","))

// ImportRowError records why a single CSV row was rejected. Line numbers are
// 1-based and count the header.
type ImportRowError struct {
	Line    int
	Message string
}

type ImportResult struct {
	Created int
	Errors  []ImportRowError
}

// ImportCSV bulk-creates products from a CSV stream. A bad row is reported
// and skipped; the rest of the batch still imports.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (*ImportResult, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, ErrBadImportHeader
	}
	if !headerMatches(header) {
		return nil, ErrBadImportHeader
	}

	res := &ImportResult{}
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			res.Errors = append(res.Errors, ImportRowError{Line: line, Message: err.Error()})
			continue
		}

		in, err := parseImportRow(record)
		if err != nil {
			res.Errors = append(res.Errors, ImportRowError{Line: line, Message: err.Error()})
			continue
		}
		if _, err := s.Create(ctx, in); err != nil {
			res.Errors = append(res.Errors, ImportRowError{Line: line, Message: err.Error()})
			continue
		}
		res.Created++
	}

	s.log.Info("products_imported",
		observability.F("created", res.Created),
		observability.F("rejected", len(res.Errors)),
	)
	return res, nil
}

func headerMatches(got []string) bool {
	if len(got) != len(importHeader) {
		return false
	}
	for i, col := range importHeader {
		if strings.ToLower(strings.TrimSpace(got[i])) != col {
			return false
		}
	}
	return true
}

func parseImportRow(record []string) (CreateProductInput, error) {
	var in CreateProductInput
	if len(record) != len(importHeader) {
		return in, fmt.Errorf("expected %d columns, got %d", len(importHeader), len(record))
	}

	in.Name = record[0]
	in.Slug = record[1]
	in.Description = record[2]
	in.Category = record[3]

	price, err := decimal.NewFromString(strings.TrimSpace(record[4]))
	if err != nil {
		return in, fmt.Errorf("price: %v", err)
	}
	in.Price = price

	if raw := strings.TrimSpace(record[5]); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return in, fmt.Errorf("discount_price: %v", err)
		}
		in.DiscountPrice = &d
	}

	stock, err := strconv.Atoi(strings.TrimSpace(record[6]))
	if err != nil {
		return in, fmt.Errorf("stock: %v", err)
	}
	in.Stock = stock

	return in, nil
}
