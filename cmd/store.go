package cmd

import (
	"fmt"

	"github.com/glebarez/sqlite"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/tarefa360/tarefa360/internal"
	"github.com/tarefa360/tarefa360/internal/core/datamodel"
)

// Store holds both views of one connection pool: gorm for the repositories and sqlx for
// the dashboard read queries.
type Store struct {
	Driver string
	Gorm   *gorm.DB
	SQLX   *sqlx.DB
}

func (s *Store) Close() error {
	return s.SQLX.Close()
}

// openStore connects to the configured driver. The sqlite driver is a local single-file
// store whose schema is kept by AutoMigrate instead of the SQL migrations.
func openStore(cfg internal.DatabaseConfig) (*Store, error) {
	switch cfg.Driver {
	case "sqlite":
		return openSQLite(cfg)
	default:
		return openPostgres(cfg)
	}
}

func openPostgres(cfg internal.DatabaseConfig) (*Store, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: dbConn.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	return &Store{Driver: "postgres", Gorm: gormDB, SQLX: dbConn}, nil
}

func openSQLite(cfg internal.DatabaseConfig) (*Store, error) {
	gormDB, err := gorm.Open(sqlite.Open(cfg.Source), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	// one writer at a time
	sqlDB.SetMaxOpenConns(1)

	if err := gormDB.AutoMigrate(datamodel.Models()...); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate sqlite store: %w", err)
	}

	sqlx.BindDriver("sqlite", sqlx.QUESTION)
	return &Store{Driver: "sqlite", Gorm: gormDB, SQLX: sqlx.NewDb(sqlDB, "sqlite")}, nil
}
