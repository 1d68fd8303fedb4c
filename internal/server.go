package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/fcttechnologies/VillainArc-sub000/internal/config"
	"github.com/fcttechnologies/VillainArc-sub000/internal/db"
	"github.com/fcttechnologies/VillainArc-sub000/internal/middleware"
	"github.com/fcttechnologies/VillainArc-sub000/internal/telemetry/metrics"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training/api"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training/classifier"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training/outcomes"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training/store"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training/suggestions"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config  *config.Config
	dbPool  *pgxpool.Pool
	service *api.Service

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
}

type NewServerParams struct {
	Config           *config.Config
	ClassifierAPIKey string
	VersionInfo      string
	TracingEnabled   bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		TracingEnabled: params.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("training", "backend", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	repo := store.NewRepo(dbPool)

	var cls classifier.Classifier = classifier.Unavailable{}
	if params.Config.ClassifierBaseURL != "" {
		tracedHttpClient := &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
		httpClassifier := classifier.NewHTTPClassifier(
			params.Config.ClassifierBaseURL,
			params.ClassifierAPIKey,
			tracedHttpClient,
		)
		httpClassifier.Metrics = metricsManager
		cls = httpClassifier
	} else {
		log.Warnln("classifier base url not set, running without a classifier")
	}

	resolver := outcomes.NewResolver(repo, cls)
	resolver.Metrics = metricsManager
	if params.Config.OutcomeOverrideConfidence > 0 {
		resolver.OverrideConfidence = params.Config.OutcomeOverrideConfidence
	}
	if params.Config.OutcomeMinAgeHours > 0 {
		resolver.MinAge = time.Duration(params.Config.OutcomeMinAgeHours) * time.Hour
	}

	service := api.NewService(api.NewServiceParams{
		Store:      repo,
		Processor:  suggestions.NewProcessor(repo),
		Resolver:   resolver,
		Classifier: cls,
		Metrics:    metricsManager,
	})

	return &Server{
		config:         params.Config,
		dbPool:         dbPool,
		service:        service,
		versionInfo:    params.VersionInfo,
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("training-router"))

	trainingHandler := api.NewHandler(s.service)
	trainingHandler.SetupRoutes(r)

	r.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(s.versionInfo))
	}).Methods("GET")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
