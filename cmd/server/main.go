package main

import (
	"log"
	"time"

	"freshcart/internal/config"
	"freshcart/internal/database"
	"freshcart/internal/handlers"
	"freshcart/internal/middlewares"
	"freshcart/internal/migrations"
	"freshcart/internal/notifier"
	"freshcart/internal/redis"
	"freshcart/internal/repository"
	"freshcart/internal/services"
	"freshcart/internal/ws"
	"freshcart/pkg/geocode"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := migrations.RunMigrations(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	// Initialize notification publisher
	notificationBus, err := notifier.New(cfg.RabbitMQURL, cfg.NotificationQueue)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ:", err)
	}
	defer notificationBus.Close()

	// Initialize geocoding client
	geocoder := geocode.NewClient(cfg.GeocoderURL, cfg.GeocoderAPIKey)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	storeRepo := repository.NewStoreRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	trackingRepo := repository.NewTrackingRepository(db)

	// Initialize connection registry
	hub := ws.NewHub()

	// Initialize services
	userService := services.NewUserService(userRepo)
	orderService := services.NewOrderService(orderRepo)
	trackingService := services.NewTrackingService(trackingRepo, orderRepo)
	assignmentService := services.NewAssignmentService(employeeRepo)
	employeeService := services.NewEmployeeService(employeeRepo, redisClient,
		time.Duration(cfg.LocationCacheTTL)*time.Second)
	fulfillmentService := services.NewFulfillmentService(
		orderService, trackingService, assignmentService, employeeService,
		orderRepo, storeRepo, hub, notificationBus, geocoder,
		cfg.CourierAvgSpeedKmh, cfg.DeliveryBaseFee, cfg.DeliveryFeePerKm,
	)
	hub.SetLocationUpdater(fulfillmentService)
	hub.SetPresenceTracker(redisClient)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, cfg.JWTSecret)
	orderHandler := handlers.NewOrderHandler(orderService, fulfillmentService)
	employeeHandler := handlers.NewEmployeeHandler(employeeService, fulfillmentService)
	wsHandler := handlers.NewWSHandler(hub, cfg.JWTSecret)

	// Setup routes
	router := gin.Default()
	router.Use(middlewares.Prometheus())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.POST("/api/auth/login", authHandler.Login)
	router.GET("/ws", wsHandler.Serve)

	api := router.Group("/api")
	api.Use(middlewares.Auth(cfg.JWTSecret))
	{
		api.POST("/orders", orderHandler.CreateOrder)
		api.GET("/orders", orderHandler.ListOrders)
		api.GET("/orders/:id", orderHandler.GetOrder)
		api.PUT("/orders/:id/status", orderHandler.UpdateStatus)
		api.POST("/orders/:id/assign-delivery", orderHandler.AssignDelivery)
		api.GET("/orders/:id/tracking", orderHandler.GetTracking)
		api.PUT("/orders/:id/tracking", orderHandler.UpdateTracking)

		api.GET("/employees/:id", employeeHandler.GetEmployee)
		api.GET("/employees/:id/location", employeeHandler.GetLocation)
		api.PUT("/employees/:id/location", employeeHandler.UpdateLocation)
		api.PUT("/employees/:id/availability", employeeHandler.SetAvailability)
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
