package database

import (
	"fmt"
	"log"

	"github.com/civictrack/backend/internal/config"
	"github.com/civictrack/backend/internal/models"
	"github.com/civictrack/backend/pkg/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port, cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connected successfully")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	log.Println("Running database migrations...")
	err := db.AutoMigrate(
		&models.Ward{},
		&models.Department{},
		&models.User{},
		&models.Complaint{},
		&models.ComplaintHistory{},
		&models.ComplaintEvidence{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Println("Database migrations completed")
	return nil
}

func Seed(db *gorm.DB) error {
	log.Println("Seeding database...")

	departments := []models.Department{
		{Name: "Water Supply", Code: "WATER", Description: "Water supply and pipeline maintenance", DefaultPriority: models.PriorityCritical},
		{Name: "Sanitation", Code: "SANITATION", Description: "Garbage collection and street cleaning", DefaultPriority: models.PriorityHigh},
		{Name: "Roads", Code: "ROADS", Description: "Road repair and maintenance", DefaultPriority: models.PriorityMedium},
		{Name: "Street Lighting", Code: "LIGHTING", Description: "Street light installation and repair", DefaultPriority: models.PriorityMedium},
		{Name: "Drainage", Code: "DRAINAGE", Description: "Storm water drains and sewerage", DefaultPriority: models.PriorityHigh},
		{Name: "Parks and Gardens", Code: "PARKS", Description: "Public parks and green spaces", DefaultPriority: models.PriorityLow},
	}
	for _, dept := range departments {
		var existing models.Department
		result := db.Where("code = ?", dept.Code).First(&existing)
		if result.Error == gorm.ErrRecordNotFound {
			if err := db.Create(&dept).Error; err != nil {
				log.Printf("Failed to create department %s: %v", dept.Code, err)
			}
		}
	}

	wards := []models.Ward{
		{Number: 1, AreaName: "Gandhi Nagar", Zone: "North"},
		{Number: 2, AreaName: "Shivaji Market", Zone: "North"},
		{Number: 3, AreaName: "Nehru Colony", Zone: "East"},
		{Number: 4, AreaName: "Lake View", Zone: "East"},
		{Number: 5, AreaName: "Station Road", Zone: "South"},
		{Number: 6, AreaName: "Industrial Area", Zone: "West"},
	}
	for _, ward := range wards {
		var existing models.Ward
		result := db.Where("number = ?", ward.Number).First(&existing)
		if result.Error == gorm.ErrRecordNotFound {
			if err := db.Create(&ward).Error; err != nil {
				log.Printf("Failed to create ward %d: %v", ward.Number, err)
			}
		}
	}

	// Default admin user
	var adminUser models.User
	result := db.Where("email = ?", "admin@civictrack.gov").First(&adminUser)
	if result.Error == gorm.ErrRecordNotFound {
		hashedPassword, _ := utils.HashPassword("admin123")
		adminUser = models.User{
			Email:     "admin@civictrack.gov",
			Password:  hashedPassword,
			FirstName: "System",
			LastName:  "Admin",
			Role:      models.RoleAdmin,
			IsActive:  true,
		}
		db.Create(&adminUser)
	}

	log.Println("Database seeding completed")
	return nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
