package config

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront/models"
)

// 依設定的driver組出gorm Dialector
func (c DatabaseConfig) Dialector() (gorm.Dialector, error) {
	switch c.Driver {
	case "mysql", "":
		dsn := c.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				c.Username,
				c.Password,
				c.Host,
				c.Port,
				c.Database,
			)
		}
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := c.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
				c.Host,
				c.Port,
				c.Username,
				c.Password,
				c.Database,
			)
		}
		return postgres.Open(dsn), nil
	case "sqlite":
		dsn := c.DSN
		if dsn == "" {
			dsn = c.Database + ".db"
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.Driver)
	}
}

func SetupDatabase(config Config) (*gorm.DB, error) {
	dialector, err := config.Database.Dialector()
	if err != nil {
		return nil, err
	}

	logLevel := logger.Warn
	if config.Server.Mode == "debug" {
		logLevel = logger.Info
	}

	//商品刪除不檢查訂單引用，因此不建立外鍵約束
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   logger.Default.LogMode(logLevel),
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

// 建立或更新資料表
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	)
}

func SetupRedisConnection(ctx context.Context, config Config) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.Database,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("ping redis %s: %w", config.Redis.Addr, err)
	}

	return redisClient, nil
}
