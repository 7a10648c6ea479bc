// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/technexus/storefront-backend/internal/domain/chat"
	"github.com/technexus/storefront-backend/internal/domain/coupon"
	"github.com/technexus/storefront-backend/internal/domain/order"
	"github.com/technexus/storefront-backend/internal/domain/product"
	"github.com/technexus/storefront-backend/internal/domain/upload"
	"github.com/technexus/storefront-backend/internal/domain/user"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, log *logrus.Logger) *Migration {
	return &Migration{
		db:  db,
		log: log,
	}
}

// Models lists every table in dependency order
func Models() []interface{} {
	return []interface{}{
		// Identity
		&user.User{},
		&user.UserRole{},
		&user.Profile{},
		&user.LoyaltyPoints{},

		// Catalog
		&product.Category{},
		&product.Product{},
		&product.Review{},

		// Promotions
		&coupon.Coupon{},

		// Orders
		&order.Order{},
		&order.OrderItem{},

		// Support chat
		&chat.Message{},

		// Media
		&upload.UploadedFile{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.log.Info("🔄 Running database auto-migrations...")

	if err := m.db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		m.log.WithError(err).Warn("could not create pgcrypto extension, relying on built-in gen_random_uuid")
	}

	for _, model := range Models() {
		m.log.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.log.Info("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes and constraints GORM tags cannot express
func (m *Migration) CreateIndexes() error {
	m.log.Info("🔄 Creating additional database indexes...")

	statements := []string{
		// Products
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_name_lower ON products(lower(name))",

		// Coupons
		"CREATE INDEX IF NOT EXISTS idx_coupons_active_window ON coupons(is_active, valid_from, valid_until)",
		`DO $$ BEGIN
			ALTER TABLE coupons ADD CONSTRAINT chk_coupons_discount_amount CHECK (discount_amount IS NULL OR discount_amount >= 0);
		EXCEPTION WHEN duplicate_object THEN NULL; END $$`,

		// Orders
		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",
		`DO $$ BEGIN
			ALTER TABLE orders ADD CONSTRAINT fk_orders_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE;
		EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
		`DO $$ BEGIN
			ALTER TABLE order_items ADD CONSTRAINT fk_order_items_product FOREIGN KEY (product_id) REFERENCES products(id);
		EXCEPTION WHEN duplicate_object THEN NULL; END $$`,

		// Reviews
		"CREATE INDEX IF NOT EXISTS idx_reviews_product_created ON reviews(product_id, created_at DESC)",
		`DO $$ BEGIN
			ALTER TABLE reviews ADD CONSTRAINT fk_reviews_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE;
		EXCEPTION WHEN duplicate_object THEN NULL; END $$`,

		// Chat
		"CREATE INDEX IF NOT EXISTS idx_chat_messages_unread ON chat_messages(is_read, is_from_admin)",
		"CREATE INDEX IF NOT EXISTS idx_chat_messages_receiver_created ON chat_messages(receiver_id, created_at)",
	}

	successCount := 0
	failCount := 0

	for _, stmt := range statements {
		if err := m.db.Exec(stmt).Error; err != nil {
			m.log.WithError(err).Warn("⚠️ Failed to apply index or constraint")
			failCount++
		} else {
			successCount++
		}
	}

	m.log.Infof("✅ Applied %d indexes and constraints (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts a starter catalog for development
func (m *Migration) SeedInitialData() error {
	m.log.Info("🌱 Seeding initial data...")

	if err := m.seedCategories(); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	if err := m.seedProducts(); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	if err := m.seedCoupons(); err != nil {
		return fmt.Errorf("failed to seed coupons: %w", err)
	}

	m.log.Info("✅ Initial data seeded successfully")
	return nil
}

func optional(s string) *string { return &s }

func (m *Migration) seedCategories() error {
	categories := []product.Category{
		{Name: "Smartphones", Description: optional("Phones and tablets")},
		{Name: "Laptops", Description: optional("Notebooks and ultrabooks")},
		{Name: "Audio", Description: optional("Headphones, earbuds and speakers")},
		{Name: "Accessories", Description: optional("Chargers, cables and cases")},
	}

	for _, category := range categories {
		var existing product.Category
		err := m.db.Where("name = ?", category.Name).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := m.db.Create(&category).Error; err != nil {
				return err
			}
			m.log.Infof("✅ Created category: %s", category.Name)
		case err != nil:
			return err
		default:
			m.log.Debugf("⏭️ Category already exists: %s", category.Name)
		}
	}
	return nil
}

func (m *Migration) seedProducts() error {
	var count int64
	if err := m.db.Model(&product.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		m.log.Debug("⏭️ Products already exist")
		return nil
	}

	categoryID := func(name string) *product.Category {
		var c product.Category
		if err := m.db.Where("name = ?", name).First(&c).Error; err != nil {
			return nil
		}
		return &c
	}

	seed := []struct {
		name     string
		category string
		price    string
		discount string
		stock    int
		featured bool
	}{
		{"Galaxy A55", "Smartphones", "1150000", "1050000", 12, true},
		{"Redmi Note 13", "Smartphones", "650000", "", 25, true},
		{"ThinkPad E14", "Laptops", "2400000", "", 5, false},
		{"JBL Tune 520BT", "Audio", "180000", "150000", 30, true},
		{"65W USB-C Charger", "Accessories", "45000", "", 60, false},
	}

	for _, s := range seed {
		p := product.Product{
			Name:       s.name,
			Price:      decimal.RequireFromString(s.price),
			Stock:      s.stock,
			IsFeatured: s.featured,
		}
		if s.discount != "" {
			p.DiscountPrice = decimal.NewNullDecimal(decimal.RequireFromString(s.discount))
		}
		if c := categoryID(s.category); c != nil {
			p.CategoryID = &c.ID
		}
		if err := m.db.Create(&p).Error; err != nil {
			return err
		}
		m.log.Infof("✅ Created product: %s", p.Name)
	}
	return nil
}

func (m *Migration) seedCoupons() error {
	pct := 10
	welcome := coupon.Coupon{
		Code:               "KARIBU10",
		DiscountPercentage: &pct,
		MinPurchaseAmount:  decimal.NewFromInt(100000),
		ValidFrom:          time.Now().UTC(),
		ValidUntil:         time.Now().UTC().AddDate(0, 3, 0),
		IsActive:           true,
	}

	var existing coupon.Coupon
	err := m.db.Where("code = ?", welcome.Code).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := m.db.Create(&welcome).Error; err != nil {
			return err
		}
		m.log.Infof("✅ Created coupon: %s", welcome.Code)
		return nil
	}
	return err
}
