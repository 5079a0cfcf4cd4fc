package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kabanhq/kaban/internal/kerrors"
)

// wrapDBError maps a raw database/sql error to Kaban's error taxonomy,
// the way the teacher's errors.go turns sql.ErrNoRows into a sentinel —
// generalised here to the full §4.8 Kind set instead of one sentinel.
func wrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return kerrors.Wrap(kerrors.NotFound, err, fmt.Sprintf("%s: not found", op))
	}
	if isUniqueConstraint(err) {
		return kerrors.Wrap(kerrors.Conflict, err, fmt.Sprintf("%s: conflict", op))
	}
	return kerrors.Wrap(kerrors.General, err, fmt.Sprintf("%s: %v", op, err))
}

// isUniqueConstraint reports whether err is a SQLite UNIQUE constraint
// violation, independent of whether it arrived wrapped.
func isUniqueConstraint(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "constraint failed: UNIQUE")
}

// isBusy reports whether err is a SQLite busy/locked condition, the
// trigger for the Store's bounded retry (§4.1).
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "database is locked") ||
		strings.Contains(s, "SQLITE_BUSY") ||
		strings.Contains(s, "SQLITE_LOCKED")
}
