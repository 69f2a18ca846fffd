package database

import (
	"context"
	"fmt"

	"cgpa-backend/internal/config"
	"cgpa-backend/internal/logger"
	"cgpa-backend/internal/model"
	"cgpa-backend/internal/store"
	"github.com/go-redis/redis/v8"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open builds the record store selected by cfg.DBDriver.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (store.Store, error) {
	switch cfg.DBDriver {
	case "sqlite", "":
		db, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info("Connected to sqlite", "path", cfg.SQLitePath)
		return store.NewGormStore(db), nil
	case "postgres":
		db, err := OpenPostgres(cfg.PostgresDSN())
		if err != nil {
			return nil, err
		}
		log.Info("Connected to postgres", "host", cfg.DBHost, "db", cfg.DBName)
		return store.NewGormStore(db), nil
	case "redis":
		client, err := OpenRedis(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Info("Connected to redis", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		return store.NewRedisStore(client), nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}

// OpenSQLite opens and migrates a sqlite database. Path may be ":memory:".
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("connect to sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// One writer at a time; also keeps ":memory:" on a single connection.
	sqlDB.SetMaxOpenConns(1)
	return migrate(db)
}

func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return migrate(db)
}

func OpenRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return rdb, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	}
}

func migrate(db *gorm.DB) (*gorm.DB, error) {
	if err := db.AutoMigrate(&model.StudentRecord{}); err != nil {
		return nil, fmt.Errorf("auto-migrate students: %w", err)
	}
	return db, nil
}
