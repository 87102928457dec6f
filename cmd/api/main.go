package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wmatuze/vbc-web-sub001/internal/config"
	"github.com/wmatuze/vbc-web-sub001/internal/content"
	"github.com/wmatuze/vbc-web-sub001/internal/httpmiddleware"
	"github.com/wmatuze/vbc-web-sub001/internal/media"
	"github.com/wmatuze/vbc-web-sub001/internal/notify"
	"github.com/wmatuze/vbc-web-sub001/internal/queue"
	"github.com/wmatuze/vbc-web-sub001/internal/requests"
	"github.com/wmatuze/vbc-web-sub001/internal/seed"
	"github.com/wmatuze/vbc-web-sub001/internal/store"
)

// app bundles the dependencies the route handlers close over.
type app struct {
	cfg      config.App
	mongo    *store.Mongo
	redis    *store.Redis
	content  *content.Service
	requests *requests.Service
	cdn      *media.Client
}

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	mongoDB, err := store.NewMongo(cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoDB.Close(ctx)
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)

	// The memory queue lives inside this process only; a separately started
	// worker will never see its messages. Use the redis backend whenever a
	// worker runs alongside the API.
	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
		log.Println("queue backend: memory (process-local, notifications are not delivered to a separate worker)")
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "vbc:notifications")
	}

	contentRepo := content.NewRepository(mongoDB.DB)
	requestRepo := requests.NewRepository(mongoDB.DB)
	publisher := notify.NewPublisher(q)

	a := &app{
		cfg:      cfg,
		mongo:    mongoDB,
		redis:    redisClient,
		content:  content.NewService(contentRepo, redisClient, time.Minute),
		requests: requests.NewService(requestRepo, publisher, eventTitles{repo: contentRepo}),
	}

	// Cloudinary client (nil when not configured)
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		a.cdn = media.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		log.Println("Cloudinary configured:", cfg.CloudinaryCloudName)
	} else {
		log.Println("Cloudinary not configured (CLOUDINARY_CLOUD_NAME / API_KEY / API_SECRET not set)")
	}

	if cfg.DevMode {
		seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := seed.Run(seedCtx, mongoDB.DB, cfg.AdminEmail, cfg.DevAdminPass); err != nil {
			log.Printf("warning: seeding failed: %v", err)
		}
		cancel()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.Metrics())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := a.redis.Healthy(c.Request.Context())
		mongoHealthy := a.mongo.Healthy(c.Request.Context())
		status := http.StatusOK
		if !redisHealthy || !mongoHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "mongo": mongoHealthy})
	})

	a.registerAuthRoutes(r)
	a.registerContentRoutes(r)
	a.registerRequestRoutes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// eventTitles resolves event ids to titles for signup notification copy.
type eventTitles struct {
	repo *content.Repository
}

func (e eventTitles) EventTitle(ctx context.Context, id string) string {
	if id == "" {
		return ""
	}
	doc, err := e.repo.Get(ctx, "events", id)
	if err != nil {
		return ""
	}
	title, _ := doc["title"].(string)
	return title
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
