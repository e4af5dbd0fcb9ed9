package main

import (
	"log"
	"os"

	"storemirror/internal/app"
)

const defaultPort = "8080"

func main() {
	mode := os.Getenv("MODE")
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	application, err := app.New()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := application.Start(mode, port); err != nil {
		log.Fatalf("Application failed: %v", err)
	}
}
