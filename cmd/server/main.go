package main

import (
	"log"
	"os"

	"threadit/internal/db"
	"threadit/internal/middleware"
	"threadit/internal/router"
	"threadit/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading env vars from system")
	}

	// Initialize Database
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=threadit port=5432 sslmode=disable"
	}
	database, err := db.Open(dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Initialize Gin
	r := gin.Default()

	// Middleware
	r.Use(cors.Default())
	r.Use(middleware.LoadUser(database))

	// List payload cache
	cache, err := utils.NewCache(500)
	if err != nil {
		log.Fatalf("Failed to create cache: %v", err)
	}

	router.RegisterRoutes(r, database, cache)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("threadit server starting on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
