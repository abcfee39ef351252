package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/greentech-platform/api/internal/application/verification"
	"github.com/greentech-platform/api/internal/config"
	"github.com/greentech-platform/api/internal/infrastructure/dynamo"
	jwtinfra "github.com/greentech-platform/api/internal/infrastructure/jwt"
	s3infra "github.com/greentech-platform/api/internal/infrastructure/s3"
	"github.com/greentech-platform/api/internal/infrastructure/smtp"
	"github.com/greentech-platform/api/internal/infrastructure/sns"
	"github.com/greentech-platform/api/internal/pkg/clock"
	"github.com/greentech-platform/api/internal/schedule"
	transporthttp "github.com/greentech-platform/api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	clk := clock.System()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider. Tokens sign every authenticated route, so a missing
	// secret is fatal.
	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("JWT provider: %v", err)
	}

	// S3 store for company logos.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	// SNS SMS sender (optional — graceful fallback).
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}

	codeRepo := dynamo.NewCodeRepo(dynamoClient, cfg.DynamoTables.VerificationCodes)

	deps := &transporthttp.Deps{
		UserRepo:      dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		CodeRepo:      codeRepo,
		CompanyRepo:   dynamo.NewCompanyRepo(dynamoClient, cfg.DynamoTables.CompanyProfiles),
		ReferenceRepo: dynamo.NewReferenceRepo(dynamoClient, cfg.DynamoTables),
		S3Store:       s3Store,
		Mailer:        mailer,
		SMSSender:     smsSender,
		JWTProvider:   jwtProvider,
		Clock:         clk,
	}

	router := transporthttp.NewRouter(cfg, deps)

	// Background sweep of expired verification codes.
	scheduler := schedule.NewScheduler()
	if err := scheduler.AddJob(verification.NewSweeper(codeRepo, clk), cfg.CodeSweepSchedule); err != nil {
		log.Fatalf("schedule sweeper: %v", err)
	}
	scheduler.Start(context.Background())

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	scheduler.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
