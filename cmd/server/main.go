package main

import (
	"log"
	"os"
	"time"

	"linkup/pkg/cache"
	"linkup/pkg/database"
	"linkup/pkg/handlers"
	"linkup/pkg/middleware"
	"linkup/pkg/repository"
	"linkup/pkg/server"
	"linkup/pkg/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[LINKUP] no .env file, reading environment")
	}

	db := database.Connect()
	defer db.Close()

	// Small pool, short-lived connections; the DB is behind a pooler.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetConnMaxIdleTime(30 * time.Second)

	database.Migrate(db)

	var store cache.Cache
	if os.Getenv("REDIS_URL") != "" {
		log.Println("[LINKUP] connecting to redis...")
		store = cache.NewRedis()
		log.Println("[LINKUP] redis connected")
	} else {
		log.Println("[LINKUP] REDIS_URL not set, using in-process cache")
		store = cache.NewMemory()
	}
	defer store.Close()

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		log.Fatalf("[LINKUP] upload dir: %v", err)
	}

	postRepo := repository.NewPostRepository(db)
	authRepo := repository.NewAuthRepository(db)

	authService := services.NewAuthService(authRepo)
	postService := services.NewPostService(postRepo, store)
	feedService := services.NewFeedService(postRepo, store)

	auth := handlers.NewAuth(authService)
	posts := handlers.NewPosts(postService, feedService, uploadDir)

	app := server.NewApp("linkup")

	authGroup := app.Group("/auth")
	authGroup.Post("/register", perIPLimit(5), auth.Register)
	authGroup.Post("/login", perIPLimit(10), auth.Login)
	authGroup.Get("/me", middleware.AuthMiddleware, auth.Me)

	postGroup := app.Group("/posts", middleware.AuthMiddleware)
	postGroup.Post("/", posts.Create)
	postGroup.Get("/", posts.List)
	postGroup.Get("/user/:userId", posts.ListByUser)
	postGroup.Put("/like/:id", posts.ToggleLike)
	postGroup.Post("/comment/:id", posts.Comment)
	postGroup.Put("/:id", posts.Edit)
	postGroup.Delete("/:id", posts.Delete)

	app.Static("/uploads", uploadDir)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	addr := "0.0.0.0:" + port
	log.Printf("[LINKUP] server starting on %s", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("[LINKUP] failed to start: %v", err)
	}
}

func perIPLimit(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	})
}
