package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"hardware-backoffice/internal/audit"
	"hardware-backoffice/internal/auth"
	billingapp "hardware-backoffice/internal/billing/application"
	billingrepo "hardware-backoffice/internal/billing/infrastructure/postgres"
	billinginterfaces "hardware-backoffice/internal/billing/interfaces"
	catalogrepo "hardware-backoffice/internal/catalog/infrastructure/postgres"
	cataloghttp "hardware-backoffice/internal/catalog/interfaces/http"
	"hardware-backoffice/internal/changefeed"
	"hardware-backoffice/internal/notify"
	"hardware-backoffice/internal/observability/metrics"
	ordersrepo "hardware-backoffice/internal/orders/infrastructure/postgres"
	ordershttp "hardware-backoffice/internal/orders/interfaces/http"
	paymentsapp "hardware-backoffice/internal/payments/application"
	paymentsrepo "hardware-backoffice/internal/payments/infrastructure/postgres"
	paymentshttp "hardware-backoffice/internal/payments/interfaces/http"
	"hardware-backoffice/internal/phtime"
	reportshttp "hardware-backoffice/internal/reports/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init()
	auditRepo := audit.NewRepository(db)
	clock := phtime.SystemClock{}
	feed := changefeed.NewFeed()

	orderRepo := ordersrepo.NewOrderRepository(db)
	paymentRepo := paymentsrepo.NewPaymentRepository(db)
	installmentRepo := billingrepo.NewInstallmentRepository(db)
	productRepo := catalogrepo.NewProductRepository(db)

	notifyCfg, err := notify.LoadConfig()
	if err != nil {
		logger.Fatalf("notify config error: %v", err)
	}
	var (
		paymentOpts []paymentsapp.Option
		orderOpts   []ordershttp.Option
	)
	if notifyCfg.Enabled() {
		template, err := notify.NewTemplate(notifyCfg.Template)
		if err != nil {
			logger.Fatalf("notify template error: %v", err)
		}
		channel := notify.NewWebhookChannel(notifyCfg.WebhookURL, notifyCfg.RequestTimeout)
		notifier, err := notify.NewNotifier(orderRepo, channel, template, logger,
			notify.WithCooldown(notifyCfg.Cooldown))
		if err != nil {
			logger.Fatalf("notifier error: %v", err)
		}
		paymentOpts = append(paymentOpts, paymentsapp.WithNotifier(notifier))
		orderOpts = append(orderOpts, ordershttp.WithStatusNotifier(notifier))
	}

	billingService, err := billingapp.NewService(orderRepo, paymentRepo, installmentRepo, clock)
	if err != nil {
		logger.Fatalf("billing service error: %v", err)
	}
	billingHandler, err := billinginterfaces.NewBillingHandler(billingService, auditRepo)
	if err != nil {
		logger.Fatalf("billing handler error: %v", err)
	}

	paymentService, err := paymentsapp.NewService(paymentRepo, orderRepo, installmentRepo, feed, paymentOpts...)
	if err != nil {
		logger.Fatalf("payment service error: %v", err)
	}
	paymentHandler, err := paymentshttp.NewHandler(paymentService, auditRepo)
	if err != nil {
		logger.Fatalf("payment handler error: %v", err)
	}

	orderHandler, err := ordershttp.NewHandler(orderRepo, feed, auditRepo, orderOpts...)
	if err != nil {
		logger.Fatalf("order handler error: %v", err)
	}

	reportHandler, err := reportshttp.NewHandler(orderRepo, clock, auditRepo)
	if err != nil {
		logger.Fatalf("report handler error: %v", err)
	}

	catalogHandler, err := cataloghttp.NewHandler(productRepo)
	if err != nil {
		logger.Fatalf("catalog handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/orders", orderHandler)
	mux.Handle("/api/v1/orders/", orderHandler)
	mux.Handle("/api/v1/payments", paymentHandler)
	mux.Handle("/api/v1/payments/", paymentHandler)
	mux.Handle("/api/v1/billing/", billingHandler)
	mux.Handle("/api/v1/products", catalogHandler)
	mux.Handle("/api/v1/products/", catalogHandler)
	mux.Handle("/api/v1/reports/transactions.xlsx", reportHandler)
	mux.Handle("/api/v1/changes/stream", changefeed.NewStreamHandler(feed))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL string
	HTTPAddr    string
	JWTSecret   string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL: getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:   getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Flush keeps SSE streaming working behind the logging wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
