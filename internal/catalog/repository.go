// Package catalog resolves deck lists against the card table in PostgreSQL
// and fills that table from card exports.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/magefree/mage-goldfish/internal/game/card"
)

// ErrUnknownCards is returned when deck names are missing from the catalog.
var ErrUnknownCards = errors.New("cards not found in catalog")

// Repository reads and writes the cards table.
type Repository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Connect opens a connection pool and checks it with a ping.
func Connect(ctx context.Context, databaseURL string, maxConns int32, logger *zap.Logger) (*Repository, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if logger != nil {
		logger.Info("card catalog connected", zap.Int32("max_conns", poolCfg.MaxConns))
	}
	return &Repository{pool: pool, logger: logger}, nil
}

// Close releases the pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// DeckEntry is one line of a deck list.
type DeckEntry struct {
	Count int
	Name  string
}

// ParseDeckLine parses "4 Mountain", "4x Mountain" or "Mountain".
func ParseDeckLine(line string) (DeckEntry, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
		return DeckEntry{}, false
	}
	count := 1
	if fields := strings.SplitN(line, " ", 2); len(fields) == 2 {
		if n, err := strconv.Atoi(strings.TrimSuffix(strings.ToLower(fields[0]), "x")); err == nil {
			count = n
			line = strings.TrimSpace(fields[1])
		}
	}
	if count <= 0 || line == "" {
		return DeckEntry{}, false
	}
	return DeckEntry{Count: count, Name: line}, true
}

// ParseDeckList parses every line of a deck list, skipping blanks and
// comments.
func ParseDeckList(lines []string) []DeckEntry {
	var out []DeckEntry
	for _, line := range lines {
		if e, ok := ParseDeckLine(line); ok {
			out = append(out, e)
		}
	}
	return out
}

// Expand repeats each resolved record Count times in deck list order.
func Expand(entries []DeckEntry, resolved map[string]card.Record) ([]card.Record, error) {
	var out []card.Record
	var missing []string
	for _, e := range entries {
		rec, ok := resolved[strings.ToLower(e.Name)]
		if !ok {
			missing = append(missing, e.Name)
			continue
		}
		for i := 0; i < e.Count; i++ {
			out = append(out, rec)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: %s", ErrUnknownCards, strings.Join(missing, ", "))
	}
	return out, nil
}

// LoadDeck resolves the deck list and commander by name. One printing per
// name is used.
func (r *Repository) LoadDeck(ctx context.Context, lines []string, commander string) ([]card.Record, *card.Record, error) {
	entries := ParseDeckList(lines)
	names := make([]string, 0, len(entries)+1)
	for _, e := range entries {
		names = append(names, strings.ToLower(e.Name))
	}
	if commander != "" {
		names = append(names, strings.ToLower(commander))
	}

	resolved, err := r.lookup(ctx, names)
	if err != nil {
		return nil, nil, err
	}
	cards, err := Expand(entries, resolved)
	if err != nil {
		return nil, nil, err
	}

	var cmdr *card.Record
	if commander != "" {
		rec, ok := resolved[strings.ToLower(commander)]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnknownCards, commander)
		}
		cmdr = &rec
	}

	if r.logger != nil {
		r.logger.Info("deck loaded from catalog",
			zap.Int("cards", len(cards)),
			zap.Int("unique", len(entries)),
			zap.String("commander", commander),
		)
	}
	return cards, cmdr, nil
}

func (r *Repository) lookup(ctx context.Context, names []string) (map[string]card.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT ON (lower(name)) name, COALESCE(mana_cost, ''), COALESCE(card_type, ''),
			COALESCE(rules_text, ''), COALESCE(power, ''), COALESCE(toughness, '')
		FROM cards
		WHERE lower(name) = ANY($1)
		ORDER BY lower(name), set_code
	`, names)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	out := make(map[string]card.Record, len(names))
	for rows.Next() {
		var rec card.Record
		if err := rows.Scan(&rec.Name, &rec.ManaCost, &rec.TypeLine, &rec.Text, &rec.Power, &rec.Toughness); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		out[strings.ToLower(rec.Name)] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cards: %w", err)
	}
	return out, nil
}
