package migrations

import (
	"log"

	"freshcart/internal/models"
	"freshcart/internal/repository"
	"freshcart/internal/services"

	"gorm.io/gorm"
)

// RunMigrations runs all database migrations and creates default data
func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.Store{},
		&models.Employee{},
		&models.Order{},
		&models.TrackingRecord{},
	)
	if err != nil {
		return err
	}

	// Create default data
	if err := createDefaultData(db); err != nil {
		log.Printf("Warning: Failed to create default data: %v", err)
	}

	log.Println("Database migrations completed successfully!")
	return nil
}

// createDefaultData creates the admin account and a demo store with one
// delivery employee so the system is usable right after first boot.
func createDefaultData(db *gorm.DB) error {
	log.Println("Creating default data...")

	userRepo := repository.NewUserRepository(db)
	userService := services.NewUserService(userRepo)
	storeRepo := repository.NewStoreRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)

	// Check if admin already exists
	if existing, err := userRepo.GetByEmail("admin@freshcart.local"); err == nil && existing != nil {
		log.Println("Admin user already exists")
		return nil
	}

	log.Println("Creating admin user...")
	admin := &models.User{
		Name:     "Administrator",
		Email:    "admin@freshcart.local",
		Role:     string(models.RoleAdmin),
		IsActive: true,
	}
	if err := userService.CreateUser(admin, "admin123"); err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
	}

	log.Println("Creating demo store...")
	store := &models.Store{
		Name:      "Fresh Corner",
		Address:   "1 Market Street",
		Latitude:  1.2841,
		Longitude: 103.8515,
		IsActive:  true,
	}
	if err := storeRepo.Create(store); err != nil {
		return err
	}

	storeOwner := &models.User{
		Name:     "Fresh Corner Manager",
		Email:    "store@freshcart.local",
		Role:     string(models.RoleStore),
		StoreID:  &store.ID,
		IsActive: true,
	}
	if err := userService.CreateUser(storeOwner, "store123"); err != nil {
		log.Printf("Warning: Failed to create store user: %v", err)
	}

	log.Println("Creating demo delivery employee...")
	courier := &models.User{
		Name:     "Demo Courier",
		Email:    "courier@freshcart.local",
		Role:     string(models.RoleDelivery),
		StoreID:  &store.ID,
		IsActive: true,
	}
	if err := userService.CreateUser(courier, "courier123"); err != nil {
		log.Printf("Warning: Failed to create courier user: %v", err)
		return nil
	}

	schedule := make(models.WeekSchedule)
	for _, day := range []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"} {
		schedule[day] = models.DaySchedule{Working: true, StartTime: "09:00", EndTime: "21:00"}
	}
	employee := &models.Employee{
		UserID:      courier.ID,
		StoreID:     store.ID,
		IsAvailable: true,
		IsActive:    true,
		Schedule:    schedule,
		Rating:      5,
	}
	if err := employeeRepo.Create(employee); err != nil {
		log.Printf("Warning: Failed to create demo employee: %v", err)
	}

	log.Println("Default data created successfully!")
	return nil
}
