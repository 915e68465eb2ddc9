// Package csv loads the meat trade CSV export into TradeRecords: header
// mapping, trimming, comma decimals and null sentinels are handled here so
// the engine only ever sees typed records.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"meatflow/internal/config"
	"meatflow/internal/model"
)

var ErrMissingColumn = errors.New("csv: missing column")

type Options struct {
	Delimiter    rune
	DecimalComma bool
	Year         string
	Product      string
	Period       string
	Country      string
	Indicators   []IndicatorColumn
}

// IndicatorColumn binds a CSV header to the indicator its values feed.
type IndicatorColumn struct {
	Indicator model.Indicator
	Header    string
}

// DefaultIndicatorColumns uses each indicator name as its own header.
func DefaultIndicatorColumns() []IndicatorColumn {
	columns := make([]IndicatorColumn, 0, len(model.Indicators()))
	for _, indicator := range model.Indicators() {
		columns = append(columns, IndicatorColumn{Indicator: indicator, Header: string(indicator)})
	}
	return columns
}

// OptionsFromConfig converts the source section of the configuration.
func OptionsFromConfig(cfg config.SourceConfig) Options {
	opts := Options{
		Delimiter:  ';',
		Year:       cfg.Columns.Year,
		Product:    cfg.Columns.Product,
		Period:     cfg.Columns.Period,
		Country:    cfg.Columns.Country,
		Indicators: DefaultIndicatorColumns(),
	}
	// cfg.Indicators lists headers in model.Indicators() order.
	for i := range opts.Indicators {
		if i < len(cfg.Indicators) && strings.TrimSpace(cfg.Indicators[i]) != "" {
			opts.Indicators[i].Header = strings.TrimSpace(cfg.Indicators[i])
		}
	}
	if r := []rune(cfg.Delimiter); len(r) == 1 {
		opts.Delimiter = r[0]
	}
	if cfg.DecimalComma == nil || *cfg.DecimalComma {
		opts.DecimalComma = true
	}
	return opts
}

type Result struct {
	Records []model.TradeRecord
	// Skipped counts rows dropped for a malformed year or for missing one of
	// the year, product, period or country cells.
	Skipped int
}

// Load reads every row of r. Malformed rows are counted and skipped, a
// missing required header is an error.
func Load(r io.Reader, opts Options) (*Result, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}
	columns := normalizeHeader(header)

	keys := []string{opts.Year, opts.Product, opts.Period, opts.Country}
	required := append([]string(nil), keys...)
	for _, column := range opts.Indicators {
		required = append(required, column.Header)
	}
	for _, name := range required {
		if _, ok := columns[normalizeKey(name)]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}

	result := &Result{Records: make([]model.TradeRecord, 0)}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read row: %w", err)
		}
		// Short rows keep their leading cells; trailing indicators read as absent.
		if !hasCells(row, columns, keys) {
			result.Skipped++
			continue
		}

		year, err := strconv.Atoi(getCell(row, columns, opts.Year))
		if err != nil {
			result.Skipped++
			continue
		}

		record := model.TradeRecord{
			Year:        year,
			ProductType: getCell(row, columns, opts.Product),
			Period:      getCell(row, columns, opts.Period),
			Country:     getCell(row, columns, opts.Country),
			Values:      make(map[model.Indicator]model.Value, len(opts.Indicators)),
		}
		for _, column := range opts.Indicators {
			record.Values[column.Indicator] = parseValue(getCell(row, columns, column.Header), opts.DecimalComma)
		}
		result.Records = append(result.Records, record)
	}
	return result, nil
}

func LoadFile(path string, opts Options) (*Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Load(file, opts)
}

var nullSentinels = map[string]struct{}{
	"":     {},
	"-":    {},
	"nd":   {},
	"n.d.": {},
	"na":   {},
	"s":    {},
	"null": {},
}

// parseValue converts a cell to a Value. Sentinels and unparsable cells are
// absent values, never zero.
func parseValue(cell string, decimalComma bool) model.Value {
	cell = strings.TrimSpace(cell)
	if _, ok := nullSentinels[strings.ToLower(cell)]; ok {
		return model.None()
	}
	cell = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "").Replace(cell)
	if decimalComma {
		// "1.234,5" and "1.234" use dots as thousands separators.
		if strings.Contains(cell, ",") || thousandsDots.MatchString(cell) {
			cell = strings.ReplaceAll(cell, ".", "")
		}
		cell = strings.ReplaceAll(cell, ",", ".")
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return model.None()
	}
	return model.Some(v)
}

var thousandsDots = regexp.MustCompile(`^[-+]?\d{1,3}(\.\d{3})+$`)

func hasCells(row []string, header map[string]int, keys []string) bool {
	for _, key := range keys {
		index, ok := header[normalizeKey(key)]
		if !ok || index >= len(row) {
			return false
		}
	}
	return true
}

func normalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(value, "\ufeff")))
}

func normalizeHeader(header []string) map[string]int {
	result := make(map[string]int, len(header))
	for i, value := range header {
		key := normalizeKey(value)
		if key == "" {
			continue
		}
		result[key] = i
	}
	return result
}

func getCell(record []string, header map[string]int, key string) string {
	index, ok := header[normalizeKey(key)]
	if !ok || index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}
