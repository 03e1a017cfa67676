package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/snippet-prep/backend/internal/auth"
	"github.com/snippet-prep/backend/internal/catalog"
	"github.com/snippet-prep/backend/internal/database"
	"github.com/snippet-prep/backend/internal/middleware"
	"github.com/snippet-prep/backend/internal/progress"
	"github.com/snippet-prep/backend/internal/quiz"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("WARN: load .env: %v", err)
	}

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Stores and services
	catalogStore := catalog.NewStore(db)
	progressStore := progress.NewStore(db)

	if err := catalogStore.SeedIfEmpty(context.Background()); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	// A failed initial load is not fatal: handlers retry hydration and
	// serve 503 until it succeeds.
	quizService := quiz.NewService(quiz.NewSessionStore(), catalogStore, progressStore)
	if err := quizService.EnsureReady(context.Background()); err != nil {
		log.Printf("WARN: catalog not loaded yet: %v", err)
	}

	// Handlers
	authHandler := auth.NewHandler(db)
	quizHandler := quiz.NewHandler(quizService)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	protected.HandleFunc("/units", quizHandler.ListUnits).Methods("GET")
	protected.HandleFunc("/units/{id}", quizHandler.GetUnit).Methods("GET")
	protected.HandleFunc("/progress", quizHandler.GetProgress).Methods("GET")

	protected.HandleFunc("/session", quizHandler.GetSession).Methods("GET")
	protected.HandleFunc("/session/start", quizHandler.StartSession).Methods("POST")
	protected.HandleFunc("/session/answer", quizHandler.SubmitAnswer).Methods("POST")
	protected.HandleFunc("/session/next", quizHandler.NextItem).Methods("POST")
	protected.HandleFunc("/session/previous", quizHandler.PreviousItem).Methods("POST")
	protected.HandleFunc("/session/finish", quizHandler.FinishSession).Methods("POST")
	protected.HandleFunc("/session/reset", quizHandler.ResetSession).Methods("POST")

	protected.HandleFunc("/admin/units/import", quizHandler.ImportUnits).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
