package pgsql

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

// The exclusion constraint is the only guard against two concurrent ingests
// of intersecting windows; the loser's error must surface as a validation
// failure, not a 500.
func TestIsWindowOverlapViolation(t *testing.T) {
	exclusion := &pgconn.PgError{
		Code:           "23P01",
		ConstraintName: "exchange_rates_no_window_overlap",
	}

	assert.True(t, isWindowOverlapViolation(exclusion))
	assert.True(t, isWindowOverlapViolation(fmt.Errorf("exec failed: %w", exclusion)))

	assert.False(t, isWindowOverlapViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isWindowOverlapViolation(errors.New("connection reset")))
	assert.False(t, isWindowOverlapViolation(nil))
}
