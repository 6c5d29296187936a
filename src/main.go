package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"Backend-Relific-Core/src/database"
	"Backend-Relific-Core/src/jobs"
	"Backend-Relific-Core/src/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
)

func main() {

	// Base connection + entity registry; nothing works without it
	if err := database.ConnectBase(); err != nil {
		log.Fatalf("Error connecting to the database: %v", err)
	}

	// Optional layers: form cache and notification queue
	database.InitRedis()
	database.InitAsynq()

	if os.Getenv("RUN_WORKER") == "true" {
		go jobs.StartWorker()
	}

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
	}))

	app.Get("/swagger/*", swagger.HandlerDefault)

	routes.InitRoutes(app)

	appURI := os.Getenv("APP_URI")
	if appURI == "" {
		appURI = "8888"
	}

	// Drain the listener on SIGINT/SIGTERM so Listen returns and the store
	// handles get closed.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("⚠️ Shutdown signal received")
		if err := app.Shutdown(); err != nil {
			log.Println("❌ Server shutdown:", err)
		}
	}()

	log.Println("Server is running on port " + appURI)
	if err := app.Listen(fmt.Sprintf(":%s", url.PathEscape(appURI))); err != nil {
		log.Println("❌ Server stopped:", err)
	}

	database.CloseAll(context.Background())
}
