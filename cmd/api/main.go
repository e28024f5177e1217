package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"dlithe/intern-portal/intern-portal-backend/internal/auth"
	"dlithe/intern-portal/intern-portal-backend/internal/certificate"
	"dlithe/intern-portal/intern-portal-backend/internal/config"
	"dlithe/intern-portal/intern-portal-backend/internal/schema"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.GetDatabaseDSN()), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatal("Failed to connect to DB:", err)
	}
	if err := db.AutoMigrate(&auth.User{}, &certificate.Record{}); err != nil {
		log.Fatal("Failed to migrate schema:", err)
	}

	r := gin.Default()

	// ---------------- AUTH ----------------
	authRepo := auth.NewRepository(db)
	authService := auth.NewService(authRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authHandler := auth.NewHandler(authService)
	auth.RegisterRoutes(r, authHandler)

	// ---------------- CERTIFICATES ----------------
	certRepo := certificate.NewRepository(db)
	certService := certificate.NewService(
		certRepo,
		schema.NewMapper(cfg.Aliases()),
		certificate.NewIDGenerator(cfg.DomainShortCodes),
		certificate.NewEngine(certificate.DefaultLayoutOptions()),
		cfg.Organizations,
	)
	certHandler := certificate.NewHandler(certService)

	api := r.Group("/api/v1", auth.RequireAuth(authService))
	certHandler.RegisterRoutes(api)

	// ---------------- PING ----------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "API alive!"})
	})

	addr := cfg.Server.GetServerAddr()
	log.Println("Server running on", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
