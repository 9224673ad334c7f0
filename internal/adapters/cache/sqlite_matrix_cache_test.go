package cache

import (
	"context"
	"database/sql"
	"escort-route-service/internal/adapters/repositories"
	"escort-route-service/internal/ports"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestSqliteMatrixCacheRoundTrip(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	require.NoError(t, repositories.InitSchema(db, repositories.DialectSQLite))

	ctx := context.Background()
	c := NewSqliteMatrixCache(db)

	err = c.PutMany(ctx, "1.000000,2.000000", map[string]ports.DistanceResult{
		"3.000000,4.000000": {DistanceMeters: 1234.5, DurationSeconds: 98.25},
		"5.000000,6.000000": {DistanceMeters: 10, DurationSeconds: 1},
	})
	require.NoError(t, err)

	// Overwrite one entry.
	err = c.PutMany(ctx, "1.000000,2.000000", map[string]ports.DistanceResult{
		"5.000000,6.000000": {DistanceMeters: 20, DurationSeconds: 2},
	})
	require.NoError(t, err)

	got, err := c.GetMany(ctx, "1.000000,2.000000", []string{
		"3.000000,4.000000", "5.000000,6.000000", "7.000000,8.000000", "3.000000,4.000000",
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]ports.DistanceResult{
		"3.000000,4.000000": {DistanceMeters: 1234.5, DurationSeconds: 98.25},
		"5.000000,6.000000": {DistanceMeters: 20, DurationSeconds: 2},
	}, got)

	other, err := c.GetMany(ctx, "9.000000,9.000000", []string{"3.000000,4.000000"})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSqliteMatrixCacheRejectsEmptyOrigin(t *testing.T) {
	c := NewSqliteMatrixCache(nil)

	_, err := c.GetMany(context.Background(), "", []string{"a"})
	require.Error(t, err)
}
