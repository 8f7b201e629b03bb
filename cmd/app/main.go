package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/contoso/burger-api/internal/app"
	"github.com/contoso/burger-api/internal/config"
)

func main() {
	// Optional in deployed environments where config comes from the pod env.
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Fatalf("failed to load .env file: %v", err)
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}

	cfg := config.MustLoad(path)

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}

	if err = a.Run(); err != nil {
		log.Fatalf("failed to run application: %v", err)
	}
}
