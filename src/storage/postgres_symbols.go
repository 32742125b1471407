package storage

import (
	"fmt"
	"regexp"
	"strings"
)

// Symbol lists may name a watchlist column instead of symbols:
//
//	pg:schema.table.field
//
// Every non-empty value of that column becomes a polled symbol. The prefix
// keeps references apart from dotted XTB names such as "AAPL.US_9".
const watchlistPrefix = "pg:"

var watchlistRef = regexp.MustCompile(`^(\w+)\.(\w+)\.(\w+)$`)

type WatchlistRef struct {
	Schema string
	Table  string
	Field  string
}

// ParseWatchlistRef reports whether sym is a watchlist reference.
func ParseWatchlistRef(sym string) (WatchlistRef, bool) {
	rest, ok := strings.CutPrefix(sym, watchlistPrefix)
	if !ok {
		return WatchlistRef{}, false
	}
	m := watchlistRef.FindStringSubmatch(rest)
	if len(m) != 4 {
		return WatchlistRef{}, false
	}
	return WatchlistRef{Schema: m[1], Table: m[2], Field: m[3]}, true
}

// -----------------------------------------------------------------------------

// ResolveSymbols expands watchlist references and drops duplicates, keeping
// first-seen order.
func (d *PostgresDB) ResolveSymbols(raw []string) ([]string, error) {
	seen := make(map[string]bool, len(raw))
	var out []string
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	for _, sym := range raw {
		ref, ok := ParseWatchlistRef(sym)
		if !ok {
			add(sym)
			continue
		}
		loaded, err := d.GetSymbolsFromTable(ref)
		if err != nil {
			return nil, fmt.Errorf("failed to load symbols from %s: %w", sym, err)
		}
		for _, s := range loaded {
			add(s)
		}
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) GetSymbolsFromTable(ref WatchlistRef) ([]string, error) {
	// Identifiers are \w+ only, so quoting is enough.
	query := fmt.Sprintf(`SELECT "%s" FROM "%s"."%s"`, ref.Field, ref.Schema, ref.Table)

	rows, err := d.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		if s != "" {
			symbols = append(symbols, s)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return symbols, nil
}
