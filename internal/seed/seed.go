package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dairylicious/dairyshop-backend/internal/users"
	"github.com/dairylicious/dairyshop-backend/pkg/config"
	"github.com/dairylicious/dairyshop-backend/pkg/db"
	"github.com/dairylicious/dairyshop-backend/pkg/db/models"
	"github.com/dairylicious/dairyshop-backend/pkg/enums"
	"github.com/dairylicious/dairyshop-backend/pkg/logger"
	"github.com/dairylicious/dairyshop-backend/pkg/security"
)

const (
	adminEmail    = "admin@dairylicious.test"
	adminPassword = "ChangeMe123!"
)

// Run loads the starter catalog and dev admin account. It is idempotent:
// a database that already has products is left untouched.
func Run(ctx context.Context, client *db.Client, passwordCfg config.PasswordConfig, logg *logger.Logger) error {
	var count int64
	if err := client.DB().WithContext(ctx).Model(&models.Product{}).Count(&count).Error; err != nil {
		return fmt.Errorf("counting products: %w", err)
	}
	if count > 0 {
		if logg != nil {
			logg.Info(ctx, "seed skipped, catalog already populated")
		}
		return nil
	}

	return client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(catalog()).Error; err != nil {
			return fmt.Errorf("seeding products: %w", err)
		}

		if err := seedAdmin(ctx, tx, passwordCfg); err != nil {
			return err
		}

		if logg != nil {
			logg.Info(ctx, "seed completed")
		}
		return nil
	})
}

func seedAdmin(ctx context.Context, tx *gorm.DB, passwordCfg config.PasswordConfig) error {
	var existing models.User
	err := tx.WithContext(ctx).Where("email = ?", adminEmail).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("checking admin user: %w", err)
	}

	hash, err := security.HashPassword(adminPassword, passwordCfg)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	admin := users.CreateUserDTO{
		Email:        adminEmail,
		PasswordHash: hash,
		FirstName:    "Dairy",
		LastName:     "Admin",
		Role:         enums.UserRoleAdmin,
	}.ToModel()

	if err := tx.WithContext(ctx).Create(admin).Error; err != nil {
		return fmt.Errorf("seeding admin user: %w", err)
	}
	return nil
}

func catalog() []models.Product {
	return []models.Product{
		{
			ID:          uuid.New(),
			Name:        "Fresh Whole Milk",
			Description: "Farm-fresh whole milk, pasteurized daily for a rich and creamy taste.",
			Category:    enums.ProductCategoryMilk,
			Unit:        enums.ProductUnitLiter,
			Price:       decimal.RequireFromString("3.49"),
			ImageURL:    "/images/products/whole-milk.jpg",
			Stock:       50,
			Rating:      4.7,
			ReviewCount: 128,
			Brand:       "Dairy Licious Farms",
			ExpiryDays:  7,
			FatContent:  floatPtr(3.5),
			Volume:      "1L",
			IsFeatured:  true,
			IsActive:    true,
		},
		{
			ID:          uuid.New(),
			Name:        "Organic Skim Milk",
			Description: "Certified organic skim milk from grass-fed cows, light and refreshing.",
			Category:    enums.ProductCategoryMilk,
			Unit:        enums.ProductUnitLiter,
			Price:       decimal.RequireFromString("4.29"),
			ImageURL:    "/images/products/skim-milk.jpg",
			Stock:       35,
			Rating:      4.5,
			ReviewCount: 86,
			Brand:       "Green Meadow",
			ExpiryDays:  7,
			FatContent:  floatPtr(0.1),
			Volume:      "1L",
			DietaryTags: pq.StringArray{"organic", "low-fat"},
			IsOrganic:   true,
			IsActive:    true,
		},
		{
			ID:          uuid.New(),
			Name:        "Aged Cheddar Cheese",
			Description: "Sharp cheddar aged twelve months, perfect for boards and sandwiches.",
			Category:    enums.ProductCategoryCheese,
			Unit:        enums.ProductUnitKg,
			Price:       decimal.RequireFromString("12.99"),
			ImageURL:    "/images/products/cheddar.jpg",
			Stock:       20,
			Rating:      4.8,
			ReviewCount: 214,
			Brand:       "Dairy Licious Farms",
			IsFeatured:  true,
			IsActive:    true,
		},
		{
			ID:          uuid.New(),
			Name:        "Fresh Mozzarella",
			Description: "Soft, milky mozzarella pulled fresh every morning.",
			Category:    enums.ProductCategoryCheese,
			Unit:        enums.ProductUnitPack,
			Price:       decimal.RequireFromString("6.49"),
			ImageURL:    "/images/products/mozzarella.jpg",
			Stock:       28,
			Rating:      4.6,
			ReviewCount: 97,
			Brand:       "Casa Bianca",
			IsActive:    true,
		},
		{
			ID:          uuid.New(),
			Name:        "Greek Yogurt",
			Description: "Thick, protein-packed Greek yogurt strained the traditional way.",
			Category:    enums.ProductCategoryYogurt,
			Unit:        enums.ProductUnitPack,
			Price:       decimal.RequireFromString("5.99"),
			ImageURL:    "/images/products/greek-yogurt.jpg",
			Stock:       40,
			Rating:      4.9,
			ReviewCount: 301,
			Brand:       "Olympus Creamery",
			ExpiryDays:  14,
			DietaryTags: pq.StringArray{"organic", "high-protein"},
			IsFeatured:  true,
			IsOrganic:   true,
			IsActive:    true,
		},
		{
			ID:          uuid.New(),
			Name:        "Salted Butter",
			Description: "Churned in small batches with a touch of sea salt.",
			Category:    enums.ProductCategoryButter,
			Unit:        enums.ProductUnitGram,
			Price:       decimal.RequireFromString("4.79"),
			ImageURL:    "/images/products/salted-butter.jpg",
			Stock:       45,
			Rating:      4.4,
			ReviewCount: 73,
			Brand:       "Dairy Licious Farms",
			IsActive:    true,
		},
		{
			ID:          uuid.New(),
			Name:        "Heavy Whipping Cream",
			Description: "Rich 36% cream that whips to stiff peaks in minutes.",
			Category:    enums.ProductCategoryCream,
			Unit:        enums.ProductUnitMl,
			Price:       decimal.RequireFromString("3.99"),
			ImageURL:    "/images/products/heavy-cream.jpg",
			Stock:       30,
			Rating:      4.6,
			ReviewCount: 58,
			Brand:       "Dairy Licious Farms",
			IsActive:    true,
		},
		{
			ID:          uuid.New(),
			Name:        "Vanilla Bean Ice Cream",
			Description: "Classic vanilla made with real Madagascar vanilla beans.",
			Category:    enums.ProductCategoryIceCream,
			Unit:        enums.ProductUnitPack,
			Price:       decimal.RequireFromString("7.49"),
			ImageURL:    "/images/products/vanilla-ice-cream.jpg",
			Stock:       25,
			Rating:      4.8,
			ReviewCount: 167,
			Brand:       "Sweet Hollow",
			IsFeatured:  true,
			IsActive:    true,
		},
	}
}

func floatPtr(v float64) *float64 {
	return &v
}
