package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"taskcommadmin/internal/domain/service"
	"taskcommadmin/pkg/config"
)

func Open(cfg *config.Config) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if cfg.IsDevelopment() {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewVerifier picks the JWKS verifier when a key set is configured and the
// shared secret otherwise.
func NewVerifier(ctx context.Context, cfg *config.Config) (service.IdentityVerifier, func(), error) {
	jwksURL := cfg.SupabaseJWKSURL
	if jwksURL == "" && cfg.SupabaseJWTSecret == "" && cfg.SupabaseURL != "" {
		jwksURL = JWKSURL(cfg.SupabaseURL)
	}

	if jwksURL != "" {
		v, err := NewJWKSVerifier(ctx, jwksURL, cfg.SupabaseAnonKey)
		if err != nil {
			return nil, nil, err
		}
		return v, v.Close, nil
	}

	if cfg.SupabaseJWTSecret == "" {
		return nil, nil, fmt.Errorf("no token verification key configured")
	}
	return NewHMACVerifier(cfg.SupabaseJWTSecret), func() {}, nil
}
