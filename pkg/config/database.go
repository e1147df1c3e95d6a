package config

import (
	"context"
	"fmt"
	"time"

	"github.com/reelhub/backend/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the database connections
type DB struct {
	SQL   *gorm.DB
	Mongo *mongo.Client
	log   *logrus.Logger
}

// InitDB opens the relational database and, when the reel store lives in
// MongoDB, the Mongo client.
func InitDB(cfg *Config, log *logrus.Logger) (*DB, error) {
	sqlDB, err := OpenSQL(cfg.DBDriver, cfg.DatabaseURL, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.DBDriver, err)
	}

	db := &DB{SQL: sqlDB, log: log}
	if cfg.ReelStore == "mongo" {
		client, err := initMongo(cfg.MongoURI)
		if err != nil {
			db.CloseDB()
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		log.Info("Successfully connected to MongoDB")
		db.Mongo = client
	}
	return db, nil
}

// timestampPrecision is the fractional-second digits of datetime columns.
// Reel timestamps are written with microsecond precision.
const timestampPrecision = 6

// dialectorFor selects the gorm dialector of a configured driver.
func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		// The mysql dialector defaults to datetime(3), which would round
		// microsecond timestamps back onto the stored value.
		precision := timestampPrecision
		return mysql.New(mysql.Config{DSN: dsn, DefaultDatetimePrecision: &precision}), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// OpenSQL opens a gorm connection for driver and verifies it with a ping.
// Driver errors are translated so duplicate keys surface as gorm.ErrDuplicatedKey.
func OpenSQL(driver, dsn string, log *logrus.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// One writer at a time; sqlite returns SQLITE_BUSY otherwise.
		sqlDB.SetMaxOpenConns(1)
	}

	log.WithField("driver", driver).Info("Successfully connected to the database")
	return db, nil
}

// AutoMigrate creates or updates the users and reels tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Reel{})
}

// initMongo initializes the MongoDB connection
func initMongo(uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping the primary to verify connection
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// CloseDB closes the database connections
func (db *DB) CloseDB() {
	if db.SQL != nil {
		sqlDB, err := db.SQL.DB()
		if err != nil {
			db.log.WithError(err).Error("Error getting SQL DB from GORM")
		} else if err := sqlDB.Close(); err != nil {
			db.log.WithError(err).Error("Error closing SQL connection")
		} else {
			db.log.Info("SQL connection closed")
		}
	}

	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			db.log.WithError(err).Error("Error closing MongoDB connection")
		} else {
			db.log.Info("MongoDB connection closed")
		}
	}
}
