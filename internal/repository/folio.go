package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"
)

// NextFolio produces the next human-facing ticket folio. The primary
// generator inserts into the folios sequence table and formats the
// auto-increment value, which keeps folios unique under concurrent
// creation and lexicographically sortable by creation order. When the
// sequence cannot be reached the folio falls back to a
// timestamp-derived value; uniqueness of the fallback is then enforced
// by the folio unique key at insert time.
func NextFolio(ctx context.Context, db *sql.DB) string {
	res, err := db.ExecContext(ctx, `INSERT INTO folios () VALUES ()`)
	if err != nil {
		return fallbackFolio(time.Now().UTC())
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fallbackFolio(time.Now().UTC())
	}
	return fmt.Sprintf("P-%08d", seq)
}

// fallbackFolio builds a timestamp-derived folio with a short random
// suffix to keep two fallbacks within the same second apart.
func fallbackFolio(now time.Time) string {
	suffix := make([]byte, 2)
	if _, err := rand.Read(suffix); err != nil {
		return "T" + now.Format("20060102150405")
	}
	return "T" + now.Format("20060102150405") + hex.EncodeToString(suffix)
}
