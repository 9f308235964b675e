package db

import (
	"fmt"

	"github.com/Kingsley-codes/we-listen/config"
	"github.com/Kingsley-codes/we-listen/internal/infrastructure/persistence/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func GetDSN(cfg *config.PostgresConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Address, cfg.Port, cfg.User, cfg.Password, cfg.DBName,
	)
}

func InitGorm(cfg *config.PostgresConfig) (*gorm.DB, error) {
	gormDB, err := gorm.Open(postgres.Open(GetDSN(cfg)), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	sqlDB.SetConnMaxLifetime(cfg.MaxLife)

	err = gormDB.AutoMigrate(
		&model.UserModel{},
		&model.SessionModel{},
		&model.MessageModel{},
		&model.TherapistModel{},
		&model.PaymentModel{},
		&model.ReferralCodeModel{},
	)
	if err != nil {
		return nil, err
	}
	return gormDB, nil
}
