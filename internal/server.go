package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/coocood/freecache"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/config"
	"github.com/2beens/fittrack/internal/dashboard"
	"github.com/2beens/fittrack/internal/db"
	"github.com/2beens/fittrack/internal/gate"
	"github.com/2beens/fittrack/internal/meals"
	"github.com/2beens/fittrack/internal/middleware"
	"github.com/2beens/fittrack/internal/misc"
	"github.com/2beens/fittrack/internal/profile"
	"github.com/2beens/fittrack/internal/progress"
	"github.com/2beens/fittrack/internal/routine"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
)

const (
	sessionsCleanupInterval = time.Hour * 8
	gatesSweepInterval      = time.Minute
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	dbPool      *pgxpool.Pool
	tipsManager *misc.TipsManager

	redisClient     *redis.Client
	notifier        *auth.Notifier
	loginChecker    *auth.LoginChecker
	authService     *auth.Service
	profileService  *profile.Service
	progressService *progress.Service
	routineService  *routine.Service
	mealsService    *meals.Service
	gates           *gate.Registry

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	PostgresUser            string
	PostgresPassword        string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		DBUser:         params.PostgresUser,
		DBPassword:     params.PostgresPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
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
	metricsManager := metrics.NewManager("fittrack", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "fittrack-backend", rdb)
	if err != nil {
		return nil, err
	}

	tipsManager, err := misc.NewDefaultTipsManager()
	if err != nil {
		return nil, fmt.Errorf("failed to create tips manager: %w", err)
	}

	s := newServer(
		params.Config,
		params.VersionInfo,
		dbPool,
		rdb,
		tipsManager,
		freecache.NewCache(params.Config.TargetsCacheSizeMB*1024*1024),
		metricsManager,
	)
	s.promRegistry = promRegistry
	s.otelShutdown = otelShutdown

	return s, nil
}

// newServer wires the services on top of already connected stores.
func newServer(
	cfg *config.Config,
	versionInfo string,
	dbPool *pgxpool.Pool,
	rdb *redis.Client,
	tipsManager *misc.TipsManager,
	targetsCache *freecache.Cache,
	metricsManager *metrics.Manager,
) *Server {
	notifier := auth.NewNotifier()
	loginChecker := auth.NewLoginChecker(cfg.SessionTTL(), rdb)
	profileService := profile.NewService(
		profile.NewRepo(dbPool),
		notifier,
		targetsCache,
		metricsManager,
	)

	return &Server{
		config:      cfg,
		dbPool:      dbPool,
		versionInfo: versionInfo,
		tipsManager: tipsManager,

		redisClient:  rdb,
		notifier:     notifier,
		loginChecker: loginChecker,
		authService: auth.NewAuthService(
			auth.NewUsersRepo(dbPool),
			cfg.SessionTTL(),
			rdb,
			notifier,
		),
		profileService: profileService,
		progressService: progress.NewService(
			progress.NewRepo(dbPool),
			profileService,
			metricsManager,
		),
		routineService: routine.NewService(routine.NewRepo(dbPool)),
		mealsService: meals.NewService(
			meals.NewRepo(dbPool),
			profileService,
			metricsManager,
		),
		gates: gate.NewRegistry(
			loginChecker,
			profileService,
			notifier,
			gate.NewPolicy(cfg.Gate),
			cfg.Gate.SettleTimeout(),
			cfg.Gate.IdleTimeout(),
			metricsManager,
		),

		metricsManager: metricsManager,
		otelShutdown:   func() {},
	}
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	miscHandler := misc.NewHandler(s.tipsManager, s.versionInfo, s.authService, s.metricsManager)
	miscHandler.SetupRoutes(r, reqRateLimiter, s.config.LoginRateLimitAllowedPerMin)

	gate.NewHandler(s.gates).SetupRoutes(r)
	profile.NewHandler(s.profileService).SetupRoutes(r)
	progress.NewHandler(s.progressService).SetupRoutes(r)
	dashboard.NewHandler(s.profileService).SetupRoutes(r)
	routine.NewHandler(s.routineService).SetupRoutes(r)
	meals.NewHandler(s.mealsService).SetupRoutes(r)

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "DELETE", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.loginChecker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins...))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.LimitAndDrainRequest(middleware.DefaultMaxBodyBytes))

	return r
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      s.routerSetup(),
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", otelhttp.NewHandler(
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
		"metrics",
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

	go s.runHousekeeping(ctx, sessionsCleanupInterval, gatesSweepInterval)

	s.metricsManager.GaugeLifeSignal.Set(1)
}

// runHousekeeping drops expired sessions and unmounts idle gates until ctx is done.
func (s *Server) runHousekeeping(ctx context.Context, sessionsEvery, gatesEvery time.Duration) {
	sessionsTicker := time.NewTicker(sessionsEvery)
	defer sessionsTicker.Stop()
	gatesTicker := time.NewTicker(gatesEvery)
	defer gatesTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debugln("housekeeping stopped")
			return
		case <-sessionsTicker.C:
			s.authService.ScanAndClean(ctx)
		case <-gatesTicker.C:
			if swept := s.gates.Sweep(); swept > 0 {
				log.Debugf("unmounted %d idle gates", swept)
			}
		}
	}
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	// gates hold notifier subscriptions, stop them before the stores go away
	s.gates.Shutdown()
	log.Trace("gates shut down ...")

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
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
