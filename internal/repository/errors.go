// Package repository defines error values and helpers reused across
// the parking repositories. These sentinel values allow higher layers
// such as services to distinguish between failure scenarios: ErrConflict
// signals that an operation cannot proceed because dependent records
// exist (e.g. deleting a rate that already billed tickets), while
// ErrDuplicate reports a uniqueness violation detected by the storage
// layer, which is how a lost read-then-write race surfaces.
package repository

import (
	"errors"
	"strings"
)

// ErrConflict is returned when a delete cannot be performed because
// dependent records exist, such as removing a rate or monthly pass
// that tickets still reference. Services pre-check references before
// deleting; this is the storage-level backstop for the raced case.
var ErrConflict = errors.New("conflict")

// ErrDuplicate is returned when an insert trips a unique key. For the
// tickets table this is the storage-level enforcement of the
// one-active-ticket-per-plate rule; callers should treat it the same
// as the application-level pre-check failing.
var ErrDuplicate = errors.New("duplicate key")

// isForeignKeyBlocked reports whether err is a MySQL cannot-delete
// error (1451): the row is still referenced by child rows.
func isForeignKeyBlocked(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "1451") || strings.Contains(msg, "foreign key constraint fails")
}

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (1062) on the named key. An empty key matches any unique index.
func isDuplicateKey(err error, key string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") && !strings.Contains(msg, "duplicate entry") {
		return false
	}
	return key == "" || strings.Contains(msg, strings.ToLower(key))
}
