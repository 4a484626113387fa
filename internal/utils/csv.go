package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"
)

// PositionHeader is the column order written by WritePositions.
var PositionHeader = []string{
	"id", "ticker", "market", "status", "entry_date", "exit_date",
	"entry_price", "exit_price", "current_price", "stop_price", "shares",
	"pnl", "pnl_percent", "fees", "exit_reason", "tags", "entry_note", "exit_note",
}

var requiredColumns = []string{"ticker", "status", "entry_date", "entry_price"}

// Header aliases seen in broker and spreadsheet exports.
var columnAliases = map[string]string{
	"symbol":      "ticker",
	"quantity":    "shares",
	"qty":         "shares",
	"stop":        "stop_price",
	"stop_loss":   "stop_price",
	"entry":       "entry_price",
	"exit":        "exit_price",
	"pnl_pct":     "pnl_percent",
	"profit_loss": "pnl",
	"commission":  "fees",
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// RowIssue describes a CSV row that was skipped.
type RowIssue struct {
	Line   int    `json:"line" yaml:"line"`
	Reason string `json:"reason" yaml:"reason"`
}

// ImportResult is the outcome of reading a journal CSV.
type ImportResult struct {
	Positions []*domain.Position
	Skipped   []RowIssue
}

// CSVOptions controls how tags are split and joined.
type CSVOptions struct {
	TagSeparator string
}

func (o CSVOptions) separator() string {
	if o.TagSeparator == "" {
		return ";"
	}
	return o.TagSeparator
}

// ReadPositions parses a header-driven journal CSV. Unknown columns are
// ignored. Rows that fail validation are skipped and reported; a missing
// required column fails the whole read.
func ReadPositions(r io.Reader, opts CSVOptions) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow ragged rows
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty CSV: %w", ports.ErrMissingColumn)
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		name := normalizeColumn(h)
		if alias, ok := columnAliases[name]; ok {
			name = alias
		}
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ports.ErrMissingColumn, strings.Join(missing, ", "))
	}

	result := &ImportResult{Positions: make([]*domain.Position, 0)}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return nil, fmt.Errorf("failed to read CSV: %w", err)
			}
			result.Skipped = append(result.Skipped, RowIssue{Line: pe.StartLine, Reason: pe.Err.Error()})
			continue
		}
		line, _ := reader.FieldPos(0)
		if blankRecord(record) {
			continue
		}

		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		pos, err := parsePosition(get, opts.separator())
		if err != nil {
			result.Skipped = append(result.Skipped, RowIssue{Line: line, Reason: err.Error()})
			continue
		}
		result.Positions = append(result.Positions, pos)
	}
	return result, nil
}

// ReadPositionsFromCSV reads a journal CSV file.
func ReadPositionsFromCSV(filename string, opts CSVOptions) (*ImportResult, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadPositions(file, opts)
}

func parsePosition(get func(string) string, tagSep string) (*domain.Position, error) {
	p := &domain.Position{
		ID:         get("id"),
		Ticker:     strings.ToUpper(get("ticker")),
		Market:     domain.ParseMarket(get("market")),
		Status:     domain.ParseStatus(get("status")),
		ExitReason: get("exit_reason"),
		EntryNote:  get("entry_note"),
		ExitNote:   get("exit_note"),
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Ticker == "" {
		return nil, fmt.Errorf("ticker is blank: %w", ports.ErrInvalidRecord)
	}

	var err error
	if p.EntryDate, err = parseDate(get("entry_date")); err != nil {
		return nil, fmt.Errorf("entry_date: %w", err)
	}
	if p.EntryDate.IsZero() {
		return nil, fmt.Errorf("entry_date is blank: %w", ports.ErrInvalidRecord)
	}
	if s := get("exit_date"); s != "" {
		exit, err := parseDate(s)
		if err != nil {
			return nil, fmt.Errorf("exit_date: %w", err)
		}
		p.ExitDate = domain.Date(exit)
	}

	entry, err := parseMoney(get("entry_price"))
	if err != nil {
		return nil, fmt.Errorf("entry_price: %w", err)
	}
	if entry != nil {
		p.EntryPrice = entry.InexactFloat64()
	}

	optional := []struct {
		col string
		dst **float64
	}{
		{"exit_price", &p.ExitPrice},
		{"current_price", &p.CurrentPrice},
		{"stop_price", &p.StopPrice},
		{"pnl", &p.PnL},
		{"pnl_percent", &p.PnLPercent},
	}
	for _, o := range optional {
		v, err := parseMoney(get(o.col))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", o.col, err)
		}
		if v != nil {
			*o.dst = domain.Float(v.InexactFloat64())
		}
	}

	shares, err := parseMoney(get("shares"))
	if err != nil {
		return nil, fmt.Errorf("shares: %w", err)
	}
	fees, err := parseMoney(get("fees"))
	if err != nil {
		return nil, fmt.Errorf("fees: %w", err)
	}
	if shares != nil {
		p.Shares = shares.InexactFloat64()
	}
	if fees != nil {
		p.Fees = fees.InexactFloat64()
	}

	// Closed rows exported without a P&L column still carry enough to derive it.
	if p.IsClosed() && p.PnL == nil && entry != nil && shares != nil && p.ExitPrice != nil {
		exit := decimal.NewFromFloat(*p.ExitPrice)
		pnl := exit.Sub(*entry).Mul(*shares)
		if fees != nil {
			pnl = pnl.Sub(*fees)
		}
		p.PnL = domain.Float(pnl.InexactFloat64())
	}

	if p.IsClosed() {
		var missing []string
		if p.ExitDate == nil {
			missing = append(missing, "exit_date")
		}
		if p.ExitPrice == nil {
			missing = append(missing, "exit_price")
		}
		if p.PnL == nil {
			missing = append(missing, "pnl")
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("closed position without %s: %w", strings.Join(missing, ", "), ports.ErrInvalidRecord)
		}
	}

	if tags := get("tags"); tags != "" {
		p.Tags = (&domain.Position{Tags: strings.Split(tags, tagSep)}).TagSet()
	}
	return p, nil
}

// WritePositions writes positions with PositionHeader.
func WritePositions(w io.Writer, positions []*domain.Position, opts CSVOptions) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(PositionHeader); err != nil {
		return err
	}
	for _, p := range positions {
		if p == nil {
			continue
		}
		record := []string{
			p.ID,
			p.Ticker,
			string(p.Market),
			string(p.Status),
			p.EntryDate.Format(time.RFC3339),
			formatDate(p.ExitDate),
			formatFloat(p.EntryPrice),
			formatOptional(p.ExitPrice),
			formatOptional(p.CurrentPrice),
			formatOptional(p.StopPrice),
			formatFloat(p.Shares),
			formatOptional(p.PnL),
			formatOptional(p.PnLPercent),
			formatFloat(p.Fees),
			p.ExitReason,
			strings.Join(p.TagSet(), opts.separator()),
			p.EntryNote,
			p.ExitNote,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WritePositionsToCSV writes positions to a file, replacing it.
func WritePositionsToCSV(positions []*domain.Position, filename string, opts CSVOptions) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := WritePositions(file, positions, opts); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func normalizeColumn(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.NewReplacer(" ", "_", "-", "_", "%", "percent").Replace(h)
}

func blankRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// parseMoney parses an amount exactly. Blank means missing; currency symbols
// and thousands separators are dropped.
func parseMoney(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "n/a") || strings.EqualFold(s, "null") {
		return nil, nil
	}
	cleaned := strings.NewReplacer("£", "", "$", "", "€", "", ",", "", "%", "", " ", "").Replace(s)
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = "-" + strings.Trim(cleaned, "()")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", s, ports.ErrInvalidRecord)
	}
	return &d, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: %w", s, ports.ErrInvalidRecord)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
