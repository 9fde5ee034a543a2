package main

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IncrementCounter adds a hit to the counter stored under key and returns
// the hits recorded since the counter was (re)started. Every hit pushes the
// expiry ttl into the future; an expired counter restarts at one.
func (d *database) IncrementCounter(ctx context.Context, key string, ttl time.Duration, now time.Time) (int64, error) {
	expires := now.Add(ttl).Unix()

	var hits int64
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry := CounterEntry{Key: key, Hits: 1, ExpiresAt: expires}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cache_key"}},
			DoUpdates: clause.Set{
				{
					Column: clause.Column{Name: "hits"},
					Value:  gorm.Expr("CASE WHEN counter_entries.expires_at <= ? THEN 1 ELSE counter_entries.hits + 1 END", now.Unix()),
				},
				{Column: clause.Column{Name: "expires_at"}, Value: expires},
			},
		}).Create(&entry).Error
		if err != nil {
			return err
		}

		err = tx.Where("cache_key = ?", key).First(&entry).Error
		if err != nil {
			return err
		}
		hits = entry.Hits
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("could not increment counter %q: %w", key, err)
	}
	return hits, nil
}

// PurgeCounters removes expired counters and returns how many were removed.
func (d *database) PurgeCounters(ctx context.Context, now time.Time) (int64, error) {
	res := d.db.WithContext(ctx).Where("expires_at <= ?", now.Unix()).Delete(&CounterEntry{})
	return res.RowsAffected, res.Error
}
