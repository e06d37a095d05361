package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"taskhub.org/internal/auth"
	"taskhub.org/internal/config"
	"taskhub.org/internal/httpapi"
	"taskhub.org/internal/mail"
	"taskhub.org/internal/obs"
	"taskhub.org/internal/store/mongostore"
)

var version = "0.3.0"

func main() {
	obs.Init()
	obs.InitBuildInfo(version, os.Getenv("TASKHUB_COMMIT"))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	client, err := mongo.Connect(ctx, mongoopts.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		cancel()
		log.Fatalf("mongo connect: %v", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		cancel()
		log.Fatalf("mongo ping: %v", err)
	}
	store := mongostore.New(client.Database(cfg.MongoDatabase))
	if err := store.EnsureIndexes(ctx); err != nil {
		cancel()
		log.Fatalf("mongo indexes: %v", err)
	}
	cancel()

	var sender mail.Sender
	if cfg.SMTPHost != "" {
		sender = mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.MailFrom,
		})
	} else {
		// Without a relay configured, log instead of delivering.
		sender = logSender{}
	}
	dispatcher := mail.NewDispatcher(sender)

	issuer, err := auth.NewIssuer("taskhub",
		[]byte(cfg.AccessTokenSecret), []byte(cfg.RefreshTokenSecret),
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		log.Fatalf("token issuer: %v", err)
	}

	svc := auth.NewService(store, issuer, dispatcher, cfg.PublicBaseURL,
		auth.WithSingleUseTTL(cfg.SingleUseTokenTTL))

	api := httpapi.New(svc,
		httpapi.ReadyProbe{Ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		}},
		version,
		httpapi.WithProduction(cfg.Production()),
		httpapi.WithCORSOrigins(cfg.CORSOrigins),
		httpapi.WithRateLimit(cfg.RateBurst, cfg.RatePerSec),
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting taskhub-api %s on %s (env=%s)", version, srv.Addr, cfg.Env)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	dispatcher.Close()
	_ = client.Disconnect(shutdownCtx)
	log.Println("Stopped")
}

// logSender stands in for SMTP during local development.
type logSender struct{}

func (logSender) Send(_ context.Context, msg mail.Message) error {
	obs.LogRequest(map[string]any{
		"level": "info", "msg": "mail (not delivered, no SMTP relay configured)",
		"to": msg.To, "subject": msg.Subject,
	})
	return nil
}
