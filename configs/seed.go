package configs

import (
	"github.com/konnn04/food-app-server/entity"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var defaultCancelReasons = []entity.CancelReason{
	{Code: "OUT_OF_STOCK", Description: "Restaurant ran out of an ordered item"},
	{Code: "RESTAURANT_CLOSED", Description: "Restaurant is closed"},
	{Code: "CUSTOMER_REQUEST", Description: "Customer asked to cancel"},
	{Code: "UNREACHABLE", Description: "Customer could not be reached"},
	{Code: "OTHER", Description: "Other reason"},
}

// SeedLookups seeds cancel reasons.
func SeedLookups(db *gorm.DB) error {
	for _, r := range defaultCancelReasons {
		if err := db.Where(entity.CancelReason{Code: r.Code}).
			Attrs(entity.CancelReason{Description: r.Description}).
			FirstOrCreate(&entity.CancelReason{}).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedDemo creates a small catalog for local runs. It is a no-op once the demo owner exists.
func SeedDemo(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.Principal{}).Where("email = ?", "owner@demo.local").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		owner := entity.Principal{Kind: entity.KindOwner, FirstName: "Demo", LastName: "Owner", Email: "owner@demo.local"}
		if err := tx.Create(&owner).Error; err != nil {
			return err
		}
		rest := entity.Restaurant{Name: "Pho 24", Address: "24 Nguyen Hue, District 1", IsActive: true, OwnerID: owner.ID}
		if err := tx.Create(&rest).Error; err != nil {
			return err
		}
		staff := entity.Principal{Kind: entity.KindStaff, FirstName: "Demo", LastName: "Staff", Email: "staff@demo.local", RestaurantID: &rest.ID}
		customer := entity.Principal{Kind: entity.KindCustomer, FirstName: "Demo", LastName: "Customer", Email: "customer@demo.local",
			Balance: decimal.NewFromInt(20000)}
		if err := tx.Create(&staff).Error; err != nil {
			return err
		}
		if err := tx.Create(&customer).Error; err != nil {
			return err
		}

		egg := entity.Topping{Name: "Egg", Price: decimal.NewFromInt(5000), IsAvailable: true}
		beef := entity.Topping{Name: "Extra beef", Price: decimal.NewFromInt(15000), IsAvailable: true}
		if err := tx.Create(&egg).Error; err != nil {
			return err
		}
		if err := tx.Create(&beef).Error; err != nil {
			return err
		}
		foods := []entity.Food{
			{Name: "Pho bo", Price: decimal.NewFromInt(50000), Available: true, RestaurantID: rest.ID, Toppings: []entity.Topping{egg, beef}},
			{Name: "Tra da", Price: decimal.NewFromInt(5000), Available: true, RestaurantID: rest.ID},
		}
		if err := tx.Create(&foods).Error; err != nil {
			return err
		}
		return tx.Create(&entity.Coupon{
			Code: "WELCOME10", Description: "10% off", DiscountType: entity.DiscountPercent,
			DiscountValue: decimal.NewFromInt(10), IsActive: true,
		}).Error
	})
}
