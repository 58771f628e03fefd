package db

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestEpochToTime(t *testing.T) {
	got := EpochToTime(1719000000)
	assert.Equal(t, time.Date(2024, 6, 21, 20, 0, 0, 0, time.UTC), got)

	frac := EpochToTime(1719000000.5)
	assert.Equal(t, int64(1719000000), frac.Unix())
	assert.InDelta(t, 500_000_000, frac.Nanosecond(), 1000)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("plain")))
	assert.False(t, IsUniqueViolation(nil))

	// Wrapped errors still match.
	wrapped := errors.Join(errors.New("insert tenant"), &pgconn.PgError{Code: "23505"})
	assert.True(t, IsUniqueViolation(wrapped))
}
