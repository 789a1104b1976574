// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobboard-workers/internal/common/aws"
	"jobboard-workers/internal/common/camunda"
	"jobboard-workers/internal/common/config"
	"jobboard-workers/internal/common/database"
	"jobboard-workers/internal/common/logger"
	"jobboard-workers/internal/common/observability"
	"jobboard-workers/internal/identity"
	"jobboard-workers/internal/store/postgres"
	"jobboard-workers/internal/store/search"
	"jobboard-workers/pkg/catalog"

	ne "jobboard-workers/internal/workers/application/notify-employer"
	sa "jobboard-workers/internal/workers/application/submit-application"
	cjp "jobboard-workers/internal/workers/jobs/create-job-posting"
	sj "jobboard-workers/internal/workers/jobs/search-jobs"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func fatal(log logger.Logger, msg string, err error) {
	log.Error(msg, map[string]interface{}{"error": err.Error()})
	os.Exit(1)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting worker manager", map[string]interface{}{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	obs := observability.New(cfg.App.Name, log)

	ctx := context.Background()

	seed, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		fatal(log, "catalog load failed", err)
	}
	if err := seed.Validate(); err != nil {
		fatal(log, "catalog invalid", err)
	}
	log.Info("catalog loaded", map[string]interface{}{
		"version":   seed.Version,
		"questions": len(seed.Questions),
		"employers": len(seed.Employers),
	})

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClient(cfg.Camunda)
		return err
	}, 10, 2*time.Second, log, "Zeebe client initialization")
	if err != nil {
		fatal(log, "zeebe client failed after retries", err)
	}
	log.Info("Zeebe client connected", nil)

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, log, "PostgreSQL connection")
	if err != nil {
		fatal(log, "postgres failed after retries", err)
	}
	defer pg.Close()

	store := postgres.NewStore(pg.DB, log)
	if err := store.EnsureSchema(ctx); err != nil {
		fatal(log, "postgres schema failed", err)
	}
	log.Info("PostgreSQL connected", nil)

	// --- Elasticsearch ---
	var es *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return es.Ping(ctx)
	}, 15, 2*time.Second, log, "Elasticsearch connection")
	if err != nil {
		fatal(log, "elasticsearch failed after retries", err)
	}

	index := search.NewIndex(es.Client, es.Index, log)
	if err := index.EnsureIndex(ctx); err != nil {
		fatal(log, "elasticsearch index setup failed", err)
	}
	log.Info("Elasticsearch connected", map[string]interface{}{"index": es.Index})

	// --- External services ---
	keycloak := identity.NewKeycloakClient(
		cfg.Auth.Keycloak.URL,
		cfg.Auth.Keycloak.Realm,
		cfg.Auth.Keycloak.ClientID,
		cfg.Auth.Keycloak.ClientSecret,
	)

	awsClients, err := aws.NewClients(ctx, cfg.Integrations.AWS.Region)
	if err != nil {
		fatal(log, "aws clients failed", err)
	}

	// --- Workers ---
	var workers []*camunda.CamundaWorker
	start := func(taskType string, handler camunda.JobHandler) {
		if !config.IsWorkerEnabled(cfg, taskType) {
			log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
			return
		}
		workers = append(workers, camunda.NewWorker(
			zeebe.GetClient(), taskType, config.GetWorkerConfig(cfg, taskType), handler, obs, log,
		))
	}

	start(cjp.TaskType, cjp.NewHandler(cjp.LoadConfig(cfg), store, index, log))
	start(sa.TaskType, sa.NewHandler(sa.LoadConfig(cfg), store, log))
	start(sj.TaskType, sj.NewHandler(sj.LoadConfig(cfg), index, log))
	start(ne.TaskType, ne.NewHandler(ne.LoadConfig(cfg), store, keycloak, awsClients.SES, awsClients.SNS, log))

	log.Info("workers registered", map[string]interface{}{"count": len(workers)})

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		readyCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pg.Ping(readyCtx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "postgres unavailable")
			return
		}
		if err := zeebe.HealthCheck(readyCtx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "zeebe unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("health/metrics server listening", map[string]interface{}{"address": cfg.Server.Address})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("health/metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, stopping workers", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		log.Error("observability shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	if err := zeebe.Close(); err != nil {
		log.Error("error closing Zeebe client", map[string]interface{}{"error": err.Error()})
	}

	log.Info("worker manager stopped", nil)
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
