package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"api/config"
	"api/database"
	"api/handlers/guesses"
	"api/handlers/share"
	"api/handlers/stats"
	"api/judge"
	"api/middleware"
	v1 "api/routes/v1"
	"api/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title DataGuess API
// @version 1.0
// @description Backend for the daily dataset guessing game
// @BasePath /api/v1
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	config.Load()
	gin.SetMode(config.GinMode)

	db, err := database.Open()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	database.Populate(db, services.CurrentDateKey())

	scorer := judge.NewHTTPJudge(config.JudgeBaseURL, config.JudgeEndpoint, config.JudgeThreshold, config.JudgeTimeout)

	puzzles := services.NewPuzzleService(db)
	players := services.NewPlayerService(db)
	attempts := services.NewAttemptService(db, scorer, puzzles, config.GuessMaxLength)
	syncSvc := services.NewSyncService(db, attempts, config.TryLimit, config.GuessMaxLength)
	shares := services.NewShareService(db)
	statsSvc := services.NewStatsService(db)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(config.AllowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.IdentityMiddleware())

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1.Register(r, v1.Handlers{
		Guesses: guesses.NewHandler(players, attempts, puzzles, syncSvc, config.TryLimit),
		Share:   share.NewHandler(players, shares),
		Stats:   stats.NewHandler(statsSvc),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	middleware.UpdateRuntimeMetrics(ctx, 15*time.Second)

	srv := &http.Server{
		Addr:    ":" + config.ServerPort,
		Handler: r,
	}

	go func() {
		log.Printf("Listening on :%s", config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	if err := database.Close(db); err != nil {
		log.Printf("Failed to close database: %v", err)
	}
}
