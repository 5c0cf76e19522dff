package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	webAdapter "finance-tracker/internal/adapters/web"
	"finance-tracker/internal/ai"
	"finance-tracker/internal/core"
	"finance-tracker/internal/db"
	"finance-tracker/internal/rates"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	database, err := db.New(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer database.Close()

	rateAPIURL := os.Getenv("EXCHANGE_RATE_API_URL")
	if rateAPIURL == "" {
		rateAPIURL = "https://api.exchangerate-api.com/v4/latest"
	}
	rateProvider := rates.NewProvider(rates.NewClient(rateAPIURL), rates.DefaultTTL, time.Now)

	reporting := core.NewReportingService(database, rateProvider)

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Println("Warning: OPENAI_API_KEY is not set")
	}
	agent := ai.NewAgent(apiKey)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(reporting, agent, allowedOrigins)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
