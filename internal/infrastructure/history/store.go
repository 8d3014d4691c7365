package history

import (
	"context"
	"fmt"
	"io"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"ReviewPulse/internal/ports"
	"ReviewPulse/pkg/logger"
)

const defaultLimit = 30

// runRecord is one restaurant outcome of one pipeline run.
type runRecord struct {
	ID             uint      `gorm:"primaryKey"`
	RunID          string    `gorm:"size:36;index"`
	RestaurantID   int64     `gorm:"index"`
	RestaurantName string    `gorm:"size:255"`
	HealthScore    int
	TotalReviews   int
	PositiveShare  float64
	NegativeShare  float64
	AlertCount     int
	CreatedAt      time.Time `gorm:"index"`
}

func (runRecord) TableName() string {
	return "run_history"
}

// Store keeps run history in a sqlite database through gorm.
type Store struct {
	db *gorm.DB
}

var _ ports.HistoryStore = (*Store)(nil)

// Open creates or migrates the sqlite database at path.
func Open(path string, logOutput io.Writer) (*Store, error) {
	gl := gormlogger.New(logger.NewWriter(logOutput, "history"), gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gl})
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := db.AutoMigrate(&runRecord{}); err != nil {
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return &Store{db: db}, nil
}

// Record appends the outcomes of one run.
func (s *Store) Record(ctx context.Context, records []ports.HistoryRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]runRecord, 0, len(records))
	for _, r := range records {
		rows = append(rows, runRecord{
			RunID:          r.RunID,
			RestaurantID:   r.RestaurantID,
			RestaurantName: r.RestaurantName,
			HealthScore:    r.HealthScore,
			TotalReviews:   r.TotalReviews,
			PositiveShare:  r.PositiveShare,
			NegativeShare:  r.NegativeShare,
			AlertCount:     r.AlertCount,
			CreatedAt:      r.CreatedAt,
		})
	}
	if err := s.db.WithContext(ctx).CreateInBatches(rows, 100).Error; err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// ForRestaurant returns the newest records first.
func (s *Store) ForRestaurant(ctx context.Context, restaurantID int64, limit int) ([]ports.HistoryRecord, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	var rows []runRecord
	err := s.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	out := make([]ports.HistoryRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, ports.HistoryRecord{
			RunID:          r.RunID,
			RestaurantID:   r.RestaurantID,
			RestaurantName: r.RestaurantName,
			HealthScore:    r.HealthScore,
			TotalReviews:   r.TotalReviews,
			PositiveShare:  r.PositiveShare,
			NegativeShare:  r.NegativeShare,
			AlertCount:     r.AlertCount,
			CreatedAt:      r.CreatedAt,
		})
	}
	return out, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
