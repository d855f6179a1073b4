package configs

import (
	"fmt"
	"net"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	maxDBRetries = 10
	dbRetryDelay = 5 * time.Second
)

func mysqlDSN(env ENV) string {
	cfg := mysqldriver.NewConfig()
	cfg.User = env.DBUser
	cfg.Passwd = env.DBPassword
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(env.DBHost, env.DBPort)
	cfg.DBName = env.DBName
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// OpenConnection connects to MySQL, retrying while the server comes up.
func OpenConnection(env ENV) (*gorm.DB, error) {
	dsn := mysqlDSN(env)

	gormLogger := logger.Default.LogMode(logger.Warn)
	if !env.IsProduction() {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	var lastErr error
	for i := 0; i < maxDBRetries; i++ {
		log.Info().Int("attempt", i+1).Int("max", maxDBRetries).Str("host", env.DBHost).Msg("Attempting to connect to database")

		db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLogger})
		if err == nil {
			sqlDB, pingErr := db.DB()
			if pingErr == nil {
				pingErr = sqlDB.Ping()
				if pingErr == nil {
					log.Info().Msg("Database connection successful")
					return db, nil
				}
			}
			lastErr = pingErr
			log.Warn().Err(pingErr).Dur("retry_in", dbRetryDelay).Msg("Failed to ping database")
		} else {
			lastErr = err
			log.Warn().Err(err).Dur("retry_in", dbRetryDelay).Msg("Failed to open GORM connection")
		}

		time.Sleep(dbRetryDelay)
	}

	return nil, fmt.Errorf("connect to database after %d retries: %w", maxDBRetries, lastErr)
}
