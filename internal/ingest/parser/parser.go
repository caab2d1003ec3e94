// Package parser turns meter exports into normalized readings and totals.
package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	_ "time/tzdata"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/voltbill/internal/config"
	"github.com/smallbiznis/voltbill/internal/ingest/domain"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Row is one valid reading.
type Row struct {
	Line        int
	Timestamp   time.Time
	Consumption decimal.Decimal
	Price       decimal.Decimal
	Amount      decimal.Decimal
}

type Result struct {
	Rows             []Row
	Skipped          int
	Invalid          int
	Issues           []domain.RowIssue
	TotalConsumption decimal.Decimal
	TotalPrice       decimal.Decimal
	LastTimestamp    time.Time
}

type Parser struct {
	dialect *config.CSVDialectHolder
	loc     *time.Location
}

func New(dialect *config.CSVDialectHolder, loc *time.Location) *Parser {
	if loc == nil {
		loc = time.UTC
	}
	return &Parser{dialect: dialect, loc: loc}
}

// LoadLocation resolves name, falling back to UTC when it is unknown.
func LoadLocation(name string) (*time.Location, error) {
	if strings.TrimSpace(name) == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, err
	}
	return loc, nil
}

// Parse reads a whole export. Identical input yields an identical Result.
func (p *Parser) Parse(r io.Reader) (Result, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("read upload: %w", err)
	}
	text, err := decode(raw)
	if err != nil {
		return Result{}, err
	}

	dialect := p.dialect.Get()
	reader := csv.NewReader(bytes.NewReader(text))
	reader.Comma = dialect.Comma()
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Result{}, domain.ErrMissingHeader
		}
		return Result{}, fmt.Errorf("%w: %v", domain.ErrMissingHeader, err)
	}
	cols, err := resolveColumns(header, dialect)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		TotalConsumption: decimal.Zero,
		TotalPrice:       decimal.Zero,
	}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				res.invalid(perr.StartLine, perr.Err.Error())
				continue
			}
			return Result{}, fmt.Errorf("read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)

		tsRaw := field(record, cols.timestamp)
		consumptionRaw := field(record, cols.consumption)
		priceRaw := field(record, cols.price)
		if tsRaw == "" || consumptionRaw == "" || priceRaw == "" {
			res.Skipped++
			continue
		}

		ts, err := p.parseTimestamp(tsRaw, dialect.TimestampLayouts)
		if err != nil {
			res.invalid(line, fmt.Sprintf("invalid timestamp %q", tsRaw))
			continue
		}
		consumption, err := parseNumber(consumptionRaw)
		if err != nil {
			res.invalid(line, fmt.Sprintf("invalid consumption %q", consumptionRaw))
			continue
		}
		price, err := parseNumber(priceRaw)
		if err != nil {
			res.invalid(line, fmt.Sprintf("invalid price %q", priceRaw))
			continue
		}

		amount := consumption.Mul(price)
		res.Rows = append(res.Rows, Row{
			Line:        line,
			Timestamp:   ts,
			Consumption: consumption,
			Price:       price,
			Amount:      amount,
		})
		res.TotalConsumption = res.TotalConsumption.Add(consumption)
		res.TotalPrice = res.TotalPrice.Add(amount)
		res.LastTimestamp = ts
	}

	return res, nil
}

func (r *Result) invalid(line int, reason string) {
	r.Invalid++
	r.Issues = append(r.Issues, domain.RowIssue{Line: line, Reason: reason})
}

type columns struct {
	timestamp   int
	consumption int
	price       int
}

func resolveColumns(header []string, dialect config.CSVDialect) (columns, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, ok := index[name]; !ok {
			index[name] = i
		}
	}

	var missing []string
	lookup := func(name string) int {
		i, ok := index[name]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return i
	}
	cols := columns{
		timestamp:   lookup(dialect.TimestampColumn),
		consumption: lookup(dialect.ConsumptionColumn),
		price:       lookup(dialect.PriceColumn),
	}
	if len(missing) > 0 {
		return columns{}, fmt.Errorf("%w: %s", domain.ErrMissingColumns, strings.Join(missing, ", "))
	}
	return cols, nil
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// decode strips a UTF-8 BOM and converts BOM-marked UTF-16 to UTF-8.
func decode(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, domain.ErrEmptyFile
	}
	if !hasUTF16BOM(raw) && !utf8.Valid(raw) {
		return nil, domain.ErrInvalidEncoding
	}

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	text, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidEncoding, err)
	}
	if len(bytes.TrimSpace(text)) == 0 {
		return nil, domain.ErrEmptyFile
	}
	return text, nil
}

func hasUTF16BOM(raw []byte) bool {
	return bytes.HasPrefix(raw, []byte{0xFE, 0xFF}) || bytes.HasPrefix(raw, []byte{0xFF, 0xFE})
}

// parseNumber accepts comma decimals such as "12,5".
func parseNumber(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
}

func (p *Parser) parseTimestamp(raw string, layouts []string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return ts, nil
	}
	for _, layout := range layouts {
		if ts, err := time.ParseInLocation(layout, raw, p.loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp %q", raw)
}
