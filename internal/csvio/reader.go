package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/richardliu001/payments-engine/internal/engine"
)

// ReadFile loads a transaction batch from a CSV file. A missing or
// unreadable file is a source failure, reported distinctly from batch
// validation problems downstream.
func ReadFile(path string) ([]engine.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot find path %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses transactions from r. Expected header: type,client,tx,amount.
// Fields may carry surrounding whitespace. The amount column is optional
// and may be empty; type strings pass through untouched so the validator
// owns kind well-formedness.
func Read(r io.Reader) ([]engine.Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1 // the amount column is omitted on some rows

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	var records []engine.Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rec, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

type columns struct {
	typ, client, tx, amount int
}

func headerIndex(header []string) (columns, error) {
	cols := columns{typ: -1, client: -1, tx: -1, amount: -1}
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "type":
			cols.typ = i
		case "client":
			cols.client = i
		case "tx":
			cols.tx = i
		case "amount":
			cols.amount = i
		}
	}
	if cols.typ < 0 || cols.client < 0 || cols.tx < 0 {
		return cols, fmt.Errorf("header must name type, client and tx columns")
	}
	return cols, nil
}

func parseRow(row []string, cols columns) (engine.Record, error) {
	var rec engine.Record

	rec.Kind = engine.Kind(strings.TrimSpace(field(row, cols.typ)))

	client, err := strconv.ParseUint(strings.TrimSpace(field(row, cols.client)), 10, 16)
	if err != nil {
		return rec, fmt.Errorf("client: %w", err)
	}
	rec.ClientID = uint16(client)

	tx, err := strconv.ParseUint(strings.TrimSpace(field(row, cols.tx)), 10, 32)
	if err != nil {
		return rec, fmt.Errorf("tx: %w", err)
	}
	rec.TxID = uint32(tx)

	if raw := strings.TrimSpace(field(row, cols.amount)); raw != "" {
		amt, err := decimal.NewFromString(raw)
		if err != nil {
			return rec, fmt.Errorf("amount: %w", err)
		}
		rec.Amount = &amt
	}
	return rec, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
