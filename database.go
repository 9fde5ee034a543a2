package main

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const (
	relatedLimit = 6
	homeLimit    = 6
	topGenres    = 12
)

// trackOrder is the listing order used everywhere tracks are shown.
var trackOrder = clause.OrderBy{Columns: []clause.OrderByColumn{
	{Column: clause.Column{Name: "is_featured"}, Desc: true},
	{Column: clause.Column{Name: "created_at"}, Desc: true},
	{Column: clause.Column{Name: "id"}, Desc: true},
}}

type database struct {
	db *gorm.DB
}

func newDatabase(driver, dsn string) (*database, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "sqlite":
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.AutoMigrate(&Genre{}, &Track{}, &Inquiry{}, &CounterEntry{})
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &database{
		db: db,
	}, nil
}

func (d *database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// SaveTrack creates or updates a track and then recomputes its genres from
// the description. Counters and the creation time are never written here.
func (d *database) SaveTrack(ctx context.Context, track *Track) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if track.Slug == "" {
			slug, err := uniqueTrackSlug(tx, track.Title, track.ID)
			if err != nil {
				return err
			}
			track.Slug = slug
		}

		var err error
		if track.ID == 0 {
			err = tx.Omit(clause.Associations).Create(track).Error
		} else {
			err = tx.Model(track).
				Select("title", "source_url", "description", "is_featured", "slug").
				Updates(track).Error
		}
		if err != nil {
			return fmt.Errorf("could not save track: %w", err)
		}

		return syncGenres(tx, track)
	})
}

// SyncTrackGenres recomputes the genres of an already stored track.
func (d *database) SyncTrackGenres(ctx context.Context, track *Track) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return syncGenres(tx, track)
	})
}

func uniqueTrackSlug(tx *gorm.DB, title string, id uint64) (string, error) {
	base := truncate(slugify(title), 200)
	if base == "" {
		base = "track"
	}

	slug := base
	for i := 2; ; i++ {
		var count int64
		err := tx.Model(&Track{}).Where("slug = ? AND id <> ?", slug, id).Count(&count).Error
		if err != nil {
			return "", fmt.Errorf("could not check slug %q: %w", slug, err)
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func (d *database) DeleteTrack(ctx context.Context, id uint64) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&Inquiry{}).Where("track_id = ?", id).Update("track_id", nil).Error
		if err != nil {
			return err
		}

		err = tx.Model(&Track{ID: id}).Association("Genres").Clear()
		if err != nil {
			return err
		}

		res := tx.Delete(&Track{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (d *database) GetTrack(ctx context.Context, id uint64) (*Track, error) {
	var track Track
	err := d.db.WithContext(ctx).Preload("Genres").First(&track, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &track, nil
}

func (d *database) GetTrackBySlug(ctx context.Context, slug string) (*Track, error) {
	var track Track
	err := d.db.WithContext(ctx).Preload("Genres").Where("slug = ?", slug).First(&track).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &track, nil
}

func (d *database) GetAllTracks(ctx context.Context) ([]*Track, error) {
	var tracks []*Track
	return tracks, d.db.WithContext(ctx).Order("id").Find(&tracks).Error
}

func (d *database) tracksByGenre(ctx context.Context, genre *Genre) *gorm.DB {
	q := d.db.WithContext(ctx).Model(&Track{})
	if genre != nil {
		q = q.Where("id IN (?)", d.db.Table("track_genres").Select("track_id").Where("genre_id = ?", genre.ID))
	}
	return q
}

func (d *database) CountTracks(ctx context.Context, genre *Genre) (int64, error) {
	var count int64
	return count, d.tracksByGenre(ctx, genre).Count(&count).Error
}

func (d *database) GetTracks(ctx context.Context, genre *Genre, offset, limit int) ([]*Track, error) {
	var tracks []*Track
	return tracks, d.tracksByGenre(ctx, genre).
		Preload("Genres").
		Order(trackOrder).
		Offset(offset).Limit(limit).
		Find(&tracks).Error
}

// GetRelatedTracks returns other tracks sharing at least one genre with track.
func (d *database) GetRelatedTracks(ctx context.Context, track *Track, limit int) ([]*Track, error) {
	tracks := []*Track{}
	if len(track.Genres) == 0 {
		return tracks, nil
	}

	genreIDs := make([]uint64, 0, len(track.Genres))
	for _, g := range track.Genres {
		genreIDs = append(genreIDs, g.ID)
	}

	return tracks, d.db.WithContext(ctx).
		Where("id <> ?", track.ID).
		Where("id IN (?)", d.db.Table("track_genres").Select("track_id").Where("genre_id IN ?", genreIDs)).
		Order(trackOrder).
		Limit(limit).
		Find(&tracks).Error
}

func (d *database) GetFeaturedTracks(ctx context.Context, limit int) ([]*Track, error) {
	var tracks []*Track
	return tracks, d.db.WithContext(ctx).
		Where("is_featured = ?", true).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&tracks).Error
}

func (d *database) GetLatestTracks(ctx context.Context, limit int) ([]*Track, error) {
	var tracks []*Track
	return tracks, d.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&tracks).Error
}

// IncrementViewCount bumps the counter in storage so concurrent requests
// never lose an update.
func (d *database) IncrementViewCount(ctx context.Context, id uint64) error {
	return d.incrementColumn(ctx, id, "view_count")
}

func (d *database) IncrementOrderClicks(ctx context.Context, id uint64) error {
	return d.incrementColumn(ctx, id, "order_clicks")
}

func (d *database) incrementColumn(ctx context.Context, id uint64, column string) error {
	return d.db.WithContext(ctx).
		Model(&Track{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1)).Error
}

// CreateGenre stores a genre, deriving its slug from the name when unset.
// A given slug must match the derived one, as genre sync looks genres up by
// the slug of their name.
func (d *database) CreateGenre(ctx context.Context, genre *Genre) error {
	slug := slugify(genre.Name)
	if slug == "" {
		return fmt.Errorf("%w: genre %q has no usable slug", ErrInvalidInput, genre.Name)
	}
	if genre.Slug != "" && genre.Slug != slug {
		return fmt.Errorf("%w: slug %q does not match genre name %q", ErrInvalidInput, genre.Slug, genre.Name)
	}
	genre.Slug = slug
	return d.db.WithContext(ctx).Create(genre).Error
}

func (d *database) GetGenreBySlug(ctx context.Context, slug string) (*Genre, error) {
	var genre Genre
	err := d.db.WithContext(ctx).Where("slug = ?", slug).First(&genre).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &genre, nil
}

func (d *database) GetGenres(ctx context.Context) ([]*Genre, error) {
	var genres []*Genre
	return genres, d.db.WithContext(ctx).Order("name").Find(&genres).Error
}

type GenreCount struct {
	Genre  `gorm:"embedded"`
	Tracks int64 `json:"tracks"`
}

// GetTopGenres returns the genres carrying the most tracks.
func (d *database) GetTopGenres(ctx context.Context, limit int) ([]*GenreCount, error) {
	var genres []*GenreCount
	return genres, d.db.WithContext(ctx).
		Model(&Genre{}).
		Select("genres.id, genres.name, genres.slug, COUNT(track_genres.track_id) AS tracks").
		Joins("LEFT JOIN track_genres ON track_genres.genre_id = genres.id").
		Group("genres.id, genres.name, genres.slug").
		Order("tracks DESC, genres.name").
		Limit(limit).
		Scan(&genres).Error
}

func (d *database) CreateInquiry(ctx context.Context, inquiry *Inquiry) error {
	if inquiry.Status == "" {
		inquiry.Status = StatusNew
	}
	return d.db.WithContext(ctx).Omit(clause.Associations).Create(inquiry).Error
}

func (d *database) GetInquiry(ctx context.Context, id uint64) (*Inquiry, error) {
	var inquiry Inquiry
	err := d.db.WithContext(ctx).Preload("Track").First(&inquiry, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &inquiry, nil
}

func (d *database) inquiriesByStatus(ctx context.Context, status InquiryStatus) *gorm.DB {
	q := d.db.WithContext(ctx).Model(&Inquiry{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	return q
}

func (d *database) CountInquiries(ctx context.Context, status InquiryStatus) (int64, error) {
	var count int64
	return count, d.inquiriesByStatus(ctx, status).Count(&count).Error
}

func (d *database) GetInquiries(ctx context.Context, status InquiryStatus, offset, limit int) ([]*Inquiry, error) {
	var inquiries []*Inquiry
	return inquiries, d.inquiriesByStatus(ctx, status).
		Preload("Track").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&inquiries).Error
}

func (d *database) UpdateInquiryStatus(ctx context.Context, id uint64, status InquiryStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inquiry Inquiry
		err := tx.Select("id").First(&inquiry, id).Error
		if err != nil {
			return notFound(err)
		}
		return tx.Model(&inquiry).Update("status", status).Error
	})
}
