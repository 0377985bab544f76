package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/falkivanov/cloudcraft-express/internal/common/errors"
	"github.com/falkivanov/cloudcraft-express/internal/common/logger"
	"github.com/falkivanov/cloudcraft-express/internal/extract/driver"
)

const employeeCacheKey = "employees:directory"

// EmployeeDirectory resolves transporter IDs to display names. The full map
// is small (one row per active driver), so it is loaded in bulk and cached
// in redis. Cache failures degrade to a database read, and a database
// failure degrades to raw-ID names; name resolution never fails extraction.
type EmployeeDirectory struct {
	db     *sql.DB
	cache  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewEmployeeDirectory(db *sql.DB, cache *redis.Client, ttl time.Duration, log logger.Logger) *EmployeeDirectory {
	return &EmployeeDirectory{
		db:     db,
		cache:  cache,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "employee-directory"}),
	}
}

// NameMap returns the transporter-ID → name map.
func (d *EmployeeDirectory) NameMap(ctx context.Context) (map[string]string, error) {
	if d.cache != nil {
		cached, err := d.cache.Get(ctx, employeeCacheKey).Result()
		if err == nil {
			var names map[string]string
			if err := json.Unmarshal([]byte(cached), &names); err == nil {
				return names, nil
			}
			// Unreadable cache entry, fall through to the database.
			d.cache.Del(ctx, employeeCacheKey)
		} else if err != redis.Nil {
			d.logger.Warn("employee cache read failed", map[string]interface{}{"error": err.Error()})
		}
	}

	rows, err := d.db.QueryContext(ctx, `SELECT transporter_id, name FROM employees WHERE transporter_id <> ''`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDatabaseFailed, "load employees", err)
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeDatabaseFailed, "scan employee", err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDatabaseFailed, "load employees", err)
	}

	if d.cache != nil {
		if payload, err := json.Marshal(names); err == nil {
			if err := d.cache.Set(ctx, employeeCacheKey, payload, d.ttl).Err(); err != nil {
				d.logger.Warn("employee cache write failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}
	return names, nil
}

// Resolver returns a NameResolver over the current directory. When the
// directory cannot be loaded, the resolver resolves nothing and drivers keep
// their transporter IDs as names.
func (d *EmployeeDirectory) Resolver(ctx context.Context) driver.NameResolver {
	names, err := d.NameMap(ctx)
	if err != nil {
		d.logger.Warn("employee directory unavailable, using raw transporter IDs", map[string]interface{}{
			"error": err.Error(),
		})
		return func(string) (string, bool) { return "", false }
	}
	return func(id string) (string, bool) {
		name, ok := names[id]
		return name, ok
	}
}

// Invalidate drops the cached directory.
func (d *EmployeeDirectory) Invalidate(ctx context.Context) {
	if d.cache != nil {
		d.cache.Del(ctx, employeeCacheKey)
	}
}
