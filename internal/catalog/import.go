package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/magefree/mage-goldfish/internal/game/card"
)

// csvColumns is the column count of a card export row.
const csvColumns = 23

// Entry is one card row of a card export.
type Entry struct {
	Name       string
	SetCode    string
	CardNumber string
	ClassName  string
	Power      string
	Toughness  string
	ManaValue  int
	Rarity     string
	Types      string
	Subtypes   string
	Supertypes string
	ManaCosts  string
	Rules      string
}

// TypeLine combines supertypes, types and subtypes the way printed cards
// show them.
func (e Entry) TypeLine() string {
	return buildTypeLine(e.Types, e.Subtypes, e.Supertypes)
}

// Record converts the entry into a card record.
func (e Entry) Record() card.Record {
	return card.Record{
		Name:      e.Name,
		ManaCost:  e.ManaCosts,
		TypeLine:  e.TypeLine(),
		Text:      e.Rules,
		Power:     e.Power,
		Toughness: e.Toughness,
	}
}

// ParseCSV reads a card export with a header row. Rows with too few columns
// are skipped and logged.
func ParseCSV(r io.Reader, logger *zap.Logger) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("CSV file is empty or has no data rows")
	}

	entries := make([]Entry, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) < csvColumns {
			if logger != nil {
				logger.Warn("skipping card row with insufficient columns",
					zap.Int("row", i+2),
					zap.Int("columns", len(row)),
				)
			}
			continue
		}
		e := Entry{
			Name:       row[0],
			SetCode:    row[1],
			CardNumber: row[2],
			ClassName:  row[3],
			Power:      row[4],
			Toughness:  row[5],
			Rarity:     row[9],
			Types:      row[10],
			Subtypes:   row[11],
			Supertypes: row[12],
			ManaCosts:  row[13],
			Rules:      row[14],
		}
		if mv, err := strconv.Atoi(row[8]); err == nil {
			e.ManaValue = mv
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func buildTypeLine(types, subtypes, supertypes string) string {
	var parts []string
	if supertypes != "" {
		parts = append(parts, supertypes)
	}
	if types != "" {
		parts = append(parts, types)
	}
	result := strings.Join(parts, " ")
	if subtypes != "" {
		result += " — " + subtypes
	}
	return result
}

// Import inserts entries in transactions of batchSize rows. A failed batch
// is counted and the import continues with the next one.
func (r *Repository) Import(ctx context.Context, entries []Entry, batchSize int) (imported, failed int, err error) {
	if batchSize <= 0 {
		batchSize = 1000
	}
	for i := 0; i < len(entries); i += batchSize {
		if err := ctx.Err(); err != nil {
			return imported, failed, err
		}
		end := i + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		batch := entries[i:end]

		n, err := r.importBatch(ctx, batch)
		if err != nil {
			if r.logger != nil {
				r.logger.Warn("card batch failed",
					zap.Int("offset", i),
					zap.Int("size", len(batch)),
					zap.Error(err),
				)
			}
			failed += len(batch)
			continue
		}
		imported += n
	}
	if r.logger != nil {
		r.logger.Info("card import complete",
			zap.Int("imported", imported),
			zap.Int("failed", failed),
		)
	}
	return imported, failed, nil
}

func (r *Repository) importBatch(ctx context.Context, batch []Entry) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range batch {
		_, err := tx.Exec(ctx, `
			INSERT INTO cards (
				card_number, set_code, name, card_type, mana_cost,
				power, toughness, rules_text, card_name, rarity, card_class_name
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`,
			e.CardNumber,
			e.SetCode,
			e.Name,
			e.TypeLine(),
			e.ManaCosts,
			e.Power,
			e.Toughness,
			e.Rules,
			e.Name,
			e.Rarity,
			e.ClassName,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert card %s: %w", e.Name, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit batch: %w", err)
	}
	return len(batch), nil
}
