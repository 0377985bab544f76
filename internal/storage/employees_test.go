package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/falkivanov/cloudcraft-express/internal/common/logger"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestNameMapLoadsAndCaches(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, client := newTestRedis(t)

	// Exactly one database read is expected; the second call is served
	// from the cache.
	mock.ExpectQuery("SELECT transporter_id, name FROM employees").
		WillReturnRows(sqlmock.NewRows([]string{"transporter_id", "name"}).
			AddRow("A1B2C3D4E5F6G7", "Max Mustermann").
			AddRow("A9876543210999", "Anna Schmidt"))

	dir := NewEmployeeDirectory(db, client, time.Minute, logger.NewTestLogger(t))

	names, err := dir.NameMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Max Mustermann", names["A1B2C3D4E5F6G7"])

	names, err = dir.NameMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Anna Schmidt", names["A9876543210999"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNameMapWithoutCache(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT transporter_id, name FROM employees").
		WillReturnRows(sqlmock.NewRows([]string{"transporter_id", "name"}).
			AddRow("A1B2C3D4E5F6G7", "Max Mustermann"))

	dir := NewEmployeeDirectory(db, nil, time.Minute, logger.NewTestLogger(t))
	names, err := dir.NameMap(context.Background())

	require.NoError(t, err)
	assert.Len(t, names, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolverFallsBackOnDatabaseError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT transporter_id, name FROM employees").
		WillReturnError(assert.AnError)

	dir := NewEmployeeDirectory(db, nil, time.Minute, logger.NewTestLogger(t))
	resolve := dir.Resolver(context.Background())

	_, ok := resolve("A1B2C3D4E5F6G7")
	assert.False(t, ok)
}

func TestInvalidate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mr, client := newTestRedis(t)
	require.NoError(t, mr.Set(employeeCacheKey, `{"A1":"stale"}`))

	dir := NewEmployeeDirectory(db, client, time.Minute, logger.NewTestLogger(t))
	dir.Invalidate(context.Background())

	assert.False(t, mr.Exists(employeeCacheKey))
	assert.NoError(t, mock.ExpectationsWereMet())
}
