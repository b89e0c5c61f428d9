package configs

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/konnn04/food-app-server/entity"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func ConnectionDB(source string) (*gorm.DB, error) {
	// lookups that miss are answered with 404s, not logged
	dbLogger := logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
	database, err := gorm.Open(sqlite.Open(source), &gorm.Config{
		TranslateError: true,
		Logger:         dbLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer; one connection keeps transactions serialised
	sqlDB.SetMaxOpenConns(1)
	return database, nil
}

func SetupDatabase(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Principal{},
		&entity.Restaurant{}, &entity.Topping{}, &entity.Food{},
		&entity.Cart{}, &entity.CartItem{}, &entity.CartItemTopping{},
		&entity.Coupon{}, &entity.CancelReason{},
		&entity.Order{}, &entity.OrderItem{}, &entity.OrderItemTopping{},
		&entity.Invoice{},
		&entity.DepositTransaction{}, &entity.WalletEntry{},
	)
}
