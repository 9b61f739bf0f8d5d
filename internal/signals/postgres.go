// internal/signals/postgres.go
package signals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// DailySignals is the persisted daily signal list, one row per trading date.
type DailySignals struct {
	ID         uint      `gorm:"primarykey"`
	TradeDate  string    `gorm:"not null;type:varchar(10);uniqueIndex"`
	BuySignals []byte    `gorm:"type:jsonb"`
	CreatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}

// PostgresStore implements Store on a Postgres table via GORM.
type PostgresStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPostgresStore connects to dsn and prepares the signal store.
func NewPostgresStore(dsn string, logger *zap.Logger) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &PostgresStore{db: db, logger: logger.Named("signal_store")}, nil
}

// RunMigrations creates or updates the daily_signals table.
func (p *PostgresStore) RunMigrations() error {
	var lockObtained bool
	if err := p.db.Raw("SELECT pg_try_advisory_lock(204)").Scan(&lockObtained).Error; err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	if !lockObtained {
		return errors.New("another migration is in progress")
	}
	defer p.db.Exec("SELECT pg_advisory_unlock(204)")

	if err := p.db.AutoMigrate(&DailySignals{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// ReadToday implements Source.
func (p *PostgresStore) ReadToday(ctx context.Context, tradeDate string) ([]Signal, error) {
	var row DailySignals
	err := p.db.WithContext(ctx).Where("trade_date = ?", tradeDate).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read daily signals: %w", err)
	}
	if len(row.BuySignals) == 0 {
		return nil, nil
	}

	var list []Signal
	if err := json.Unmarshal(row.BuySignals, &list); err != nil {
		return nil, fmt.Errorf("decode daily signals for %s: %w", tradeDate, err)
	}
	return list, nil
}

// SaveToday implements Store with an upsert on the trading date.
func (p *PostgresStore) SaveToday(ctx context.Context, tradeDate string, list []Signal) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode daily signals: %w", err)
	}

	row := DailySignals{TradeDate: tradeDate, BuySignals: raw}
	err = p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "trade_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"buy_signals", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save daily signals: %w", err)
	}

	p.logger.Info("Saved daily signals",
		zap.String("trade_date", tradeDate),
		zap.Int("count", len(list)))
	return nil
}

// Close releases the underlying connection pool.
func (p *PostgresStore) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
