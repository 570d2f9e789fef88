package main

import (
	"context"
	"log"
	"net/http"
	_ "net/http/pprof"

	"opinionmap/internal/config"
	"opinionmap/internal/container"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load environment variables from .env file
	if !config.LoadDotEnv() {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Close()

	ctx := context.Background()
	if err := appContainer.InitWithDatabase(ctx); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	// CREATE IF NOT EXISTS leaves an exported votes table untouched
	if err := appContainer.Migrate(ctx); err != nil {
		log.Fatalf("Failed to prepare vote schema: %v", err)
	}

	// Start pprof server for performance profiling
	if appConfig.Profiling.Enabled {
		go func() {
			log.Printf("Performance profiling server starting on :%s", appConfig.Profiling.Port)
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
				log.Printf("pprof server failed: %v", err)
			}
		}()
	}

	gin.SetMode(appConfig.Server.GinMode)
	server := appContainer.APIServer()

	log.Printf("Starting opinionmap server on port %s", appConfig.Server.Port)
	log.Fatal(server.Run(":" + appConfig.Server.Port))
}
