package main

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/0xcafe-io/iz"
	"github.com/rs/cors"

	"finance-dashboard/api"
	"finance-dashboard/internal/assistant"
	"finance-dashboard/internal/finance"
	"finance-dashboard/internal/storage"
	"finance-dashboard/logging"
)

var dashboard finance.Dashboard // Global

var corsConf = cors.New(cors.Options{
	AllowedOrigins:   []string{"*"},
	AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	AllowedHeaders:   []string{"Authorization", "Content-Type"},
	AllowCredentials: true,
})

func main() {
	if err := logging.Init("debug"); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		return
	}

	logging.Logger.Info("application starting...")

	db, err := storage.Init()
	if err != nil {
		logging.Logger.Errorf("failed to initialize database: %v", err)
		return
	}

	storageInstance := storage.NewMySQLStorage(db)
	dashboard = finance.NewDashboard(storageInstance, finance.NewLogCacheInvalidator())

	var aiClient *assistant.Client
	if apiKey := os.Getenv("AI_API_KEY"); apiKey != "" {
		timeout := assistant.DefaultTimeout
		if seconds, err := strconv.Atoi(os.Getenv("AI_TIMEOUT_SECONDS")); err == nil && seconds > 0 {
			timeout = time.Duration(seconds) * time.Second
		}
		aiClient = assistant.NewClient(apiKey, os.Getenv("AI_BASE_URL"), getEnvOrDefault("AI_MODEL", "gpt-4o-mini"), timeout)
		logging.Logger.Info("AI client initialized")
	} else {
		logging.Logger.Info("AI client not configured, assistant chat disabled")
	}
	assist := assistant.New(&dashboard, aiClient)

	server := http.NewServeMux()
	api := api.NewApi(&dashboard, assist)

	// USER ENDPOINTS.
	server.HandleFunc("POST /api/register", iz.Bind(api.SaveUserHandler)) // Create User
	server.HandleFunc("POST /api/login", iz.Bind(api.LoginUserHandler))   // Login User
	server.HandleFunc("GET /api/logout", iz.Bind(api.LogoutUserHandler))  // Logout User

	// ACCOUNT ENDPOINTS.
	server.HandleFunc("POST /api/account", iz.Bind(api.CreateAccountHandler))                  // Create Account
	server.HandleFunc("GET /api/account", iz.Bind(api.GetUserAccountsHandler))                 // Get Accounts with counts
	server.HandleFunc("GET /api/account/{id}", iz.Bind(api.GetAccountByIdHandler))             // Get Account with transactions
	server.HandleFunc("PUT /api/account/default/{id}", iz.Bind(api.UpdateDefaultAccountHandler)) // Switch Default Account

	// TRANSACTION ENDPOINTS.
	server.HandleFunc("POST /api/transaction", iz.Bind(api.SaveTransactionHandler))                   // Create Transaction
	server.HandleFunc("GET /api/transaction/category", iz.Bind(api.GetTransactionsByCategoryHandler)) // Get Transactions by category

	// SUMMARY ENDPOINT.
	server.HandleFunc("GET /api/summary", iz.Bind(api.GetFinancialSummaryHandler)) // Financial Summary

	// AI ENDPOINTS.
	server.HandleFunc("POST /api/ai/tools", iz.Bind(api.ExecuteToolHandler))     // Execute a tool by name
	server.HandleFunc("POST /api/ai/chat", iz.Bind(api.ChatHandler))             // Conversational assistant
	server.HandleFunc("POST /api/ai/analyze", iz.Bind(api.AnalyzeAccountHandler)) // Analyze one account

	port := os.Getenv("APP_PORT")
	if port == "" {
		logging.Logger.Info("APP_PORT environment variable not set, using default port 8080")
		port = "8080"
	}
	fmt.Println("Starting server on port: ", port)
	handlerWithCors := corsConf.Handler(server)
	if err := http.ListenAndServe(":"+port, handlerWithCors); err != nil {
		logging.Logger.Errorf("failed to start server: %v", err)
		return
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
