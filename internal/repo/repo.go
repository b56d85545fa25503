package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/pet_shop/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) Migrate(ctx context.Context) error {
	db := r.DB.WithContext(ctx)
	return db.AutoMigrate(
		&models.Address{},
		&models.ShippingProvider{},
		&models.PaymentMethod{},
		&models.Voucher{},
		&models.Food{},
		&models.Accessory{},
		&models.Order{},
		&models.LineItem{},
		&models.OrderAudit{},
		&models.Cart{},
		&models.CartItem{},
		&models.GroomingService{},
		&models.ServiceOrder{},
		&models.Notification{},
		&models.CompensationFailure{},
	)
}

func (r *GormRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
