package infra

import (
	"errors"
	"fmt"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/infra/migrations"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/internal/database"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDBConnection opens the configured database. appEnv selects the gorm log
// level: info in development, silent otherwise.
func NewDBConnection(
	cnf *config.DB,
	appEnv string,
) (*gorm.DB, error) {
	databaseUrl := cnf.Url
	if databaseUrl == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	var logMode logger.LogLevel
	if appEnv == "development" {
		logMode = logger.Info
	} else {
		logMode = logger.Silent
	}
	gormCfg := &gorm.Config{
		Logger:                 logger.Default.LogMode(logMode),
		TranslateError:         true,
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	}

	switch cnf.Driver {
	case "sqlite":
		return database.OpenSQLite(databaseUrl, gormCfg)
	case "postgres", "":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cnf.Driver)
	}

	connection, err := gorm.Open(postgres.Open(databaseUrl), gormCfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := connection.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)

	if cnf.Migrate {
		if err := migrations.Up(connection); err != nil {
			return nil, err
		}
	}
	return connection, nil
}
