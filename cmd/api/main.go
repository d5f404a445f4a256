package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"printhub.org/internal/assets"
	"printhub.org/internal/auth"
	"printhub.org/internal/config"
	"printhub.org/internal/httpapi"
	"printhub.org/internal/mailer"
	"printhub.org/internal/obs"
	"printhub.org/internal/otp"
	"printhub.org/internal/printjob"
	"printhub.org/internal/report"
	"printhub.org/internal/store/pg"
	redisstore "printhub.org/internal/store/redis"
)

var version = "0.3.1"

func main() {
	obs.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	store, err := pg.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	mail := mailer.New(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.EmailFrom,
	})

	tokens, err := auth.NewTokens(cfg.TokenSecret, auth.WithTokenTTL(cfg.TokenTTL))
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}
	authSvc, err := auth.NewService(store, tokens, auth.WithMailer(mail))
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	local, err := assets.NewLocal(cfg.UploadDir)
	if err != nil {
		log.Fatalf("upload dir: %v", err)
	}
	jobSvc, err := printjob.NewService(store,
		printjob.WithRemoteStore(assets.NewRemote(cfg.StorageURL, cfg.StorageKey)),
		printjob.WithLocalStore(local))
	if err != nil {
		log.Fatalf("printjob service: %v", err)
	}

	// OTP state lives in Redis when configured, otherwise in process memory
	var otpStore otp.Store = otp.NewInMemory()
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rs, err := redisstore.Open(ctx, cfg.RedisAddr, cfg.RedisPassword)
		cancel()
		if err != nil {
			log.Fatalf("open redis: %v", err)
		}
		otpStore = rs
	}
	otpSvc, err := otp.NewService(otpStore, mail)
	if err != nil {
		log.Fatalf("otp service: %v", err)
	}

	reportSvc, err := report.NewService(store)
	if err != nil {
		log.Fatalf("report service: %v", err)
	}

	api := httpapi.New(httpapi.Options{
		Auth:       authSvc,
		Tokens:     tokens,
		Jobs:       jobSvc,
		OTP:        otpSvc,
		Reports:    reportSvc,
		ReadyProbe: httpapi.ReadyProbe{DB: store.DB()},
		Version:    version,
	})

	handler := api.Handler()
	handler = httpapi.RateLimit(handler, cfg.RateBurst, cfg.RatePerSec)
	handler = httpapi.MaxBodyBytes(handler, cfg.MaxBodyBytes)
	handler = httpapi.CORS(handler, cfg.CORSOrigins)
	handler = httpapi.SecurityHeaders(handler)
	handler = httpapi.Logging(handler)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting printhub-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}
