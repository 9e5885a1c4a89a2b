package refdata

import (
	"embed"
	"encoding/csv"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
)

//go:embed assets/*.csv
var embeddedAssets embed.FS

// Table file names within a CSV source directory
const (
	westernSignFile = "zodiac-table-west.csv"
	deltaTFile      = "deltat-reference.csv"
	chineseYearFile = "zodiac-table-chinese.csv"
)

// CSVProvider loads the reference tables from flat CSV files. Lines
// starting with '#' are comments; a single header row is tolerated.
type CSVProvider struct {
	fsys    fs.FS
	version string
}

// NewCSVProvider reads tables from the given directory
func NewCSVProvider(dir string) *CSVProvider {
	return &CSVProvider{fsys: os.DirFS(dir), version: "csv:" + dir}
}

// NewEmbeddedProvider reads the tables compiled into the binary
func NewEmbeddedProvider() *CSVProvider {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		// embed layout is fixed at build time
		panic("refdata: embedded assets missing: " + err.Error())
	}
	return &CSVProvider{fsys: sub, version: "embedded"}
}

// LoadTables parses and indexes all three tables
func (p *CSVProvider) LoadTables() (*Tables, error) {
	signs, err := readRows(p.fsys, westernSignFile, 3, parseSignRow)
	if err != nil {
		return nil, err
	}
	dt, err := readRows(p.fsys, deltaTFile, 4, parseDeltaTRow)
	if err != nil {
		return nil, err
	}
	cy, err := readRows(p.fsys, chineseYearFile, 3, parseChineseRow)
	if err != nil {
		return nil, err
	}
	return newTables(p.version, signs, dt, cy)
}

// Close is a no-op for file-backed tables
func (p *CSVProvider) Close() error { return nil }

// readRows parses one CSV table, skipping comments and a header row
func readRows[T any](fsys fs.FS, name string, fields int, parse func([]string) (T, error)) ([]T, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening reference table %s: %w", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comment = '#'
	r.FieldsPerRecord = fields
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing reference table %s: %w", name, err)
	}

	var out []T
	for i, rec := range records {
		if i == 0 && isHeader(rec) {
			continue
		}
		row, err := parse(rec)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", name, i+1, err)
		}
		out = append(out, row)
	}
	return out, nil
}

// isHeader detects a leading column-name row by its known first cells
func isHeader(rec []string) bool {
	switch strings.ToLower(strings.TrimSpace(rec[0])) {
	case "sign", "year", "animal", "animal_de":
		return true
	}
	return false
}

func parseSignRow(rec []string) (WesternSignRange, error) {
	start, err := parseMonthDay(rec[1])
	if err != nil {
		return WesternSignRange{}, err
	}
	end, err := parseMonthDay(rec[2])
	if err != nil {
		return WesternSignRange{}, err
	}
	return WesternSignRange{Sign: strings.TrimSpace(rec[0]), Start: start, End: end}, nil
}

func parseDeltaTRow(rec []string) (DeltaTRef, error) {
	year, err := strconv.Atoi(strings.TrimSpace(rec[0]))
	if err != nil {
		return DeltaTRef{}, fmt.Errorf("bad year %q", rec[0])
	}
	secs, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
	if err != nil {
		return DeltaTRef{}, fmt.Errorf("bad seconds %q", rec[1])
	}
	tol, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
	if err != nil {
		return DeltaTRef{}, fmt.Errorf("bad tolerance %q", rec[2])
	}
	return DeltaTRef{Year: year, Seconds: secs, Tolerance: tol, Note: strings.TrimSpace(rec[3])}, nil
}

func parseChineseRow(rec []string) (ChineseYearInterval, error) {
	start, err := time.Parse(time.RFC3339, strings.TrimSpace(rec[1]))
	if err != nil {
		return ChineseYearInterval{}, fmt.Errorf("bad start instant %q", rec[1])
	}
	end, err := time.Parse(time.RFC3339, strings.TrimSpace(rec[2]))
	if err != nil {
		return ChineseYearInterval{}, fmt.Errorf("bad end instant %q", rec[2])
	}
	return ChineseYearInterval{
		Animal: strings.TrimSpace(rec[0]),
		Start:  start.UTC(),
		End:    end.UTC(),
	}, nil
}

func parseMonthDay(s string) (MonthDay, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return MonthDay{}, fmt.Errorf("bad month-day %q", s)
	}
	m, err := strconv.Atoi(parts[0])
	if err != nil || m < 1 || m > 12 {
		return MonthDay{}, fmt.Errorf("bad month in %q", s)
	}
	d, err := strconv.Atoi(parts[1])
	if err != nil || d < 1 || d > 31 {
		return MonthDay{}, fmt.Errorf("bad day in %q", s)
	}
	return MonthDay{Month: time.Month(m), Day: d}, nil
}
