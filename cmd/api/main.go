package main

import (
	"log"
	"os"

	_ "github.com/dotuanbn/ANHUYHOADON-sub000/api/swagger" // swagger docs
	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/database"
	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/handler"
	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/middleware"
	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/repository"
	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/service"
	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/websocket"
	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/workflow"
	"github.com/dotuanbn/ANHUYHOADON-sub000/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           Order Management API
// @version         1.0
// @description     Order and invoice management API with a status workflow engine.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	if err := logger.Init(os.Getenv("GIN_MODE")); err != nil {
		log.Fatalf("Logger initialization failed: %v", err)
	}
	defer logger.Sync()
	zlog := logger.Get()

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	zlog.Info("connected to PostgreSQL")

	// WebSocket hub
	wsHub := websocket.NewHub(zlog)
	go wsHub.Run()

	// Repositories
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	sequenceRepo := repository.NewSequenceRepository(db)

	// Services
	userService := service.NewUserService(userRepo)
	sequenceService := service.NewSequenceService(sequenceRepo)
	customerService := service.NewCustomerService(customerRepo, orderRepo, txManager)
	productService := service.NewProductService(productRepo, auditRepo, txManager)
	templateService := service.NewTemplateService(templateRepo, auditRepo, txManager)
	statisticsService := service.NewStatisticsService(db)
	orderService := service.NewOrderService(
		orderRepo, productRepo, customerRepo, auditRepo,
		sequenceService, customerService, txManager, wsHub, zlog,
	)
	posService := service.NewPosService(
		orderRepo, productRepo, customerRepo, auditRepo,
		sequenceService, customerService, txManager, zlog,
	)

	// Workflow engine: the single writer of order status
	engine := workflow.NewEngine(orderRepo, customerService, auditRepo, txManager, wsHub, zlog)

	// Handlers
	userHandler := handler.NewUserHandler(userService)
	orderHandler := handler.NewOrderHandler(orderService, engine)
	customerHandler := handler.NewCustomerHandler(customerService)
	productHandler := handler.NewProductHandler(productService)
	templateHandler := handler.NewTemplateHandler(templateService)
	posHandler := handler.NewPosHandler(posService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)
	auditHandler := handler.NewAuditHandler(auditRepo)

	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// API routing
	userHandler.RegisterRoutes(router.Group(""))
	orderHandler.RegisterRoutes(router.Group(""))
	customerHandler.RegisterRoutes(router.Group(""))
	productHandler.RegisterRoutes(router.Group(""))
	templateHandler.RegisterRoutes(router.Group(""))
	posHandler.RegisterRoutes(router.Group(""))
	statisticsHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	zlog.Info("server listening", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		zlog.Fatal("server failed", zap.Error(err))
	}
}
