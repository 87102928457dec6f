package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wmatuze/vbc-web-sub001/internal/config"
	"github.com/wmatuze/vbc-web-sub001/internal/notify"
	"github.com/wmatuze/vbc-web-sub001/internal/queue"
	"github.com/wmatuze/vbc-web-sub001/internal/store"
)

var deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "vbc_notification_deliveries_total",
	Help: "Notification delivery attempts by outcome.",
}, []string{"outcome"})

// Worker consumes notification messages and delivers emails. Delivery is
// fire and forget: failures are counted and logged, never retried, and the
// triggering request succeeded long before we got here.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)

	// A memory queue here is its own empty queue, not the API's; the worker
	// only receives real traffic on the redis backend.
	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
		log.Println("queue backend: memory (process-local, nothing published by the API will arrive here)")
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "vbc:notifications")
	}

	var sender notify.Sender
	if cfg.ResendAPIKey != "" {
		sender = notify.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom)
		log.Println("email delivery via Resend")
	} else {
		sender = notify.NoopSender{}
		log.Println("RESEND_API_KEY not set, emails are logged only")
	}

	// Metrics endpoint on its own port so the scraper can see delivery counts.
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(":"+cfg.MetricsPort, mux); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for notifications...")
	for msg := range messages {
		if err := notify.Deliver(ctx, sender, msg); err != nil {
			deliveries.WithLabelValues("failed").Inc()
			log.Printf("notification delivery failed: %v", err)
			continue
		}
		deliveries.WithLabelValues("sent").Inc()
	}

	log.Println("worker stopped")
}
