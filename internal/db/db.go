package db

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/williamsps/maintenance-portal/internal/config"
	"github.com/williamsps/maintenance-portal/internal/model"
)

func New(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	logLevel := gormlogger.Warn
	if cfg.Environment == "development" {
		logLevel = gormlogger.Info
	}

	database, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	if cfg.DB.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	}
	if cfg.DB.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	}
	if cfg.DB.ConnMaxLifetime != "" {
		lifetime, err := time.ParseDuration(cfg.DB.ConnMaxLifetime)
		if err != nil {
			return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
		}
		sqlDB.SetConnMaxLifetime(lifetime)
	}

	if err := Migrate(database, cfg.DB.Driver); err != nil {
		return nil, err
	}
	if err := MarkProtectedClients(context.Background(), database, cfg.Clients.ProtectedCodes); err != nil {
		return nil, err
	}

	log.Info().Str("driver", cfg.DB.Driver).Msg("database ready")
	return database, nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Models lists every table owned by the service, in creation order.
func Models() []interface{} {
	return []interface{}{
		&model.Client{},
		&model.User{},
		&model.Quote{},
		&model.QuoteNumberSequence{},
		&model.QuoteMessage{},
		&model.QuoteAttachment{},
		&model.WorkOrder{},
		&model.WorkOrderNote{},
		&model.WorkOrderPhoto{},
		&model.Alert{},
	}
}

// Migrate creates the schema and, on postgres, the constraints gorm tags cannot express.
func Migrate(database *gorm.DB, driver string) error {
	if err := database.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if driver != "postgres" {
		return nil
	}
	return runMigrations(database)
}

// MarkProtectedClients flags clients whose code is listed as undeletable.
func MarkProtectedClients(ctx context.Context, database *gorm.DB, codes []string) error {
	if len(codes) == 0 {
		return nil
	}
	err := database.WithContext(ctx).Model(&model.Client{}).
		Where("code IN ? AND protected = ?", codes, false).
		Update("protected", true).Error
	if err != nil {
		return fmt.Errorf("mark protected clients: %w", err)
	}
	return nil
}
