package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/jmoiron/sqlx"
)

type columnKind int

const (
	textColumn columnKind = iota
	intColumn
	realColumn
)

type importColumn struct {
	name     string
	kind     columnKind
	aliases  []string // normalized header spellings
	required bool
}

type importTable struct {
	file    string
	table   string
	columns []importColumn
}

// importTables lists the CSV files ImportCSV understands. Header matching is
// case-insensitive and ignores spaces, underscores and punctuation, so both
// "customer_id" and "customerId" are accepted.
var importTables = []importTable{
	{file: "members.csv", table: "members", columns: []importColumn{
		{name: "customer_id", aliases: []string{"customerid"}, required: true},
		{name: "first_name", aliases: []string{"firstname"}},
		{name: "last_name", aliases: []string{"lastname"}},
		{name: "email", aliases: []string{"email"}},
		{name: "phone", aliases: []string{"phone", "phonenumber"}},
		{name: "zipcode", aliases: []string{"zipcode"}},
		{name: "membership_plan", aliases: []string{"membershipplan"}},
		{name: "status", aliases: []string{"status"}},
		{name: "cancel_reason", aliases: []string{"cancelreason"}},
		{name: "trainer", aliases: []string{"trainer"}},
		{name: "gender", aliases: []string{"gender"}},
		{name: "age", kind: intColumn, aliases: []string{"age"}},
		{name: "weight", kind: realColumn, aliases: []string{"weight"}},
		{name: "height", kind: realColumn, aliases: []string{"height"}},
		{name: "activity_level", aliases: []string{"activitylevel"}},
	}},
	{file: "locations.csv", table: "locations", columns: []importColumn{
		{name: "gym_id", kind: intColumn, aliases: []string{"gymid"}, required: true},
		{name: "address", aliases: []string{"address"}},
		{name: "location", aliases: []string{"location", "city"}},
		{name: "zip_code", aliases: []string{"zipcode"}},
		{name: "amenities", aliases: []string{"amenities"}},
		{name: "latitude", kind: realColumn, aliases: []string{"lat", "latitude"}, required: true},
		{name: "longitude", kind: realColumn, aliases: []string{"long", "lon", "longitude"}, required: true},
		{name: "capacity", kind: intColumn, aliases: []string{"capacity"}, required: true},
	}},
	{file: "zipcodes.csv", table: "zipcodes", columns: []importColumn{
		{name: "zipcode", aliases: []string{"zipcode", "prefix"}, required: true},
		{name: "latitude", kind: realColumn, aliases: []string{"lat", "latitude"}, required: true},
		{name: "longitude", kind: realColumn, aliases: []string{"long", "lon", "longitude"}, required: true},
	}},
	{file: "occupancy.csv", table: "occupancy", columns: []importColumn{
		{name: "gym_id", kind: intColumn, aliases: []string{"gymid"}, required: true},
		{name: "month", kind: intColumn, aliases: []string{"month"}, required: true},
		{name: "day_of_week", kind: intColumn, aliases: []string{"dayofweek", "weekday"}, required: true},
		{name: "hour", kind: intColumn, aliases: []string{"hour"}, required: true},
		{name: "number_people", kind: intColumn, aliases: []string{"numberpeople", "people"}, required: true},
	}},
	{file: "trainers.csv", table: "trainers", columns: []importColumn{
		{name: "name", aliases: []string{"name"}, required: true},
		{name: "specialization", aliases: []string{"specialization"}, required: true},
		{name: "age", kind: intColumn, aliases: []string{"age"}},
	}},
	{file: "reviews.csv", table: "reviews", columns: []importColumn{
		{name: "trainer", aliases: []string{"trainer"}, required: true},
		{name: "review", aliases: []string{"review"}, required: true},
	}},
	{file: "usage.csv", table: "usage_sessions", columns: []importColumn{
		{name: "customer_id", aliases: []string{"customerid"}, required: true},
		{name: "date", aliases: []string{"date"}, required: true},
		{name: "duration_hours", kind: realColumn, aliases: []string{"sessiondurationhours", "durationhours", "duration"}, required: true},
	}},
}

// ImportCSV loads whichever of the known CSV files exist in dir. Each present
// file replaces the contents of its table. Everything runs in one transaction;
// a bad row aborts the whole import.
func (s *Store) ImportCSV(ctx context.Context, dir string) (map[string]int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	counts := make(map[string]int)
	for _, t := range importTables {
		path := filepath.Join(dir, t.file)
		f, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		n, err := importFile(ctx, tx, t, f)
		if closeErr := f.Close(); closeErr != nil {
			s.logger.Debug("failed to close import file", "path", path, "error", closeErr)
		}
		if err != nil {
			return nil, fmt.Errorf("importing %s: %w", t.file, err)
		}
		counts[t.table] = n
		s.logger.Info("imported table", "table", t.table, "rows", n)
	}

	if len(counts) == 0 {
		return nil, fmt.Errorf("no importable CSV files in %s", dir)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}
	return counts, nil
}

func importFile(ctx context.Context, tx *sqlx.Tx, t importTable, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("reading header: %w", err)
	}

	var names []string
	var cols []importColumn
	var idx []int // CSV field index feeding cols[i]
	for _, col := range t.columns {
		pos := slices.IndexFunc(header, func(h string) bool {
			return slices.Contains(col.aliases, normalizeHeader(h))
		})
		if pos < 0 {
			if col.required {
				return 0, fmt.Errorf("missing required column %q", col.name)
			}
			continue
		}
		names = append(names, col.name)
		cols = append(cols, col)
		idx = append(idx, pos)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+t.table); err != nil {
		return 0, fmt.Errorf("clearing %s: %w", t.table, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	stmt, err := tx.PreparexContext(ctx, `INSERT INTO `+t.table+` (`+strings.Join(names, ", ")+`) VALUES (`+placeholders+`)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	rows := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("line %d: %w", rows+2, err)
		}

		args := make([]any, len(cols))
		for i, col := range cols {
			raw := ""
			if idx[i] < len(rec) {
				raw = strings.TrimSpace(rec[idx[i]])
			}
			v, err := convertField(col, raw)
			if err != nil {
				return rows, fmt.Errorf("line %d column %s: %w", rows+2, col.name, err)
			}
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return rows, fmt.Errorf("line %d: %w", rows+2, err)
		}
		rows++
	}
	return rows, nil
}

func convertField(col importColumn, raw string) (any, error) {
	switch col.kind {
	case intColumn:
		if raw == "" {
			return 0, nil
		}
		// Spreadsheet exports write integers as "12.0".
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, err
		}
		return int64(f), nil
	case realColumn:
		if raw == "" {
			return 0.0, nil
		}
		// Some exports use a decimal comma.
		return strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	default:
		if col.name == "customer_id" {
			return strings.ToLower(raw), nil
		}
		return raw, nil
	}
}

func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.TrimPrefix(h, "\ufeff") {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

