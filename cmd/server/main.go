package main

import (
	"context"
	"fmt"
	"github.com/beldeveloper/bluegreen/internal/app"
	"github.com/beldeveloper/bluegreen/internal/app/config"
	"github.com/beldeveloper/bluegreen/internal/app/metrics"
	"github.com/beldeveloper/bluegreen/internal/app/postgres"
	"github.com/beldeveloper/bluegreen/internal/app/sqlite"
	"github.com/beldeveloper/bluegreen/internal/app/svc"
	"github.com/beldeveloper/go-errors-context"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/julienschmidt/httprouter"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"k8s.io/utils/clock"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	cliApp := &cli.App{
		Name:  "bluegreen",
		Usage: "blue/green deployment orchestrator",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "http-port", Value: "8080", EnvVars: []string{"BLUEGREEN_HTTP_PORT"}},
			&cli.StringFlag{Name: "grpc-port", Value: "9090", EnvVars: []string{"BLUEGREEN_GRPC_PORT"}},
			&cli.StringFlag{Name: "https-crt", EnvVars: []string{"BLUEGREEN_HTTPS_CRT"}},
			&cli.StringFlag{Name: "https-key", EnvVars: []string{"BLUEGREEN_HTTPS_KEY"}},
			&cli.StringFlag{Name: "access-key", EnvVars: []string{"BLUEGREEN_ACCESS_KEY"}},
			&cli.StringFlag{Name: "groups-file", Required: true, EnvVars: []string{"BLUEGREEN_GROUPS_FILE"}},
			&cli.StringFlag{Name: "store", Value: storeSqlite, Usage: "sqlite or postgres", EnvVars: []string{"BLUEGREEN_STORE"}},
			&cli.StringFlag{Name: "sqlite-path", Value: "bluegreen.db", EnvVars: []string{"BLUEGREEN_SQLITE_PATH"}},
			&cli.StringFlag{Name: "db-host", EnvVars: []string{"BLUEGREEN_DB_HOST"}},
			&cli.StringFlag{Name: "db-port", Value: "5432", EnvVars: []string{"BLUEGREEN_DB_PORT"}},
			&cli.StringFlag{Name: "db-user", EnvVars: []string{"BLUEGREEN_DB_USER"}},
			&cli.StringFlag{Name: "db-password", EnvVars: []string{"BLUEGREEN_DB_PASSWORD"}},
			&cli.StringFlag{Name: "db-name", EnvVars: []string{"BLUEGREEN_DB_NAME"}},
			&cli.StringFlag{Name: "provisioner-url", Usage: "empty means the pools are pre-provisioned", EnvVars: []string{"BLUEGREEN_PROVISIONER_URL"}},
			&cli.DurationFlag{Name: "watch-delay", Value: svc.WatchJobDelay, EnvVars: []string{"BLUEGREEN_WATCH_DELAY"}},
			&cli.BoolFlag{Name: "debug", EnvVars: []string{"BLUEGREEN_DEBUG"}},
			&cli.StringFlag{Name: "log-format", Value: "text", Usage: "text or json", EnvVars: []string{"BLUEGREEN_LOG_FORMAT"}},
		},
		Action: run,
	}
	if err := cliApp.Run(os.Args); err != nil {
		log.Fatalf("main: %v\n", err)
	}
}

func run(c *cli.Context) error {
	if c.Bool("debug") {
		log.SetLevel(log.DebugLevel)
	}
	if c.String("log-format") == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}
	s := newSettings(c)
	metrics.Register()
	// get watcher, orchestrator and router using DI wire
	cont, cleanup, err := initializeContainer(s)
	if err != nil {
		return errors.WrapContext(err, errors.Context{Path: "main.run.initializeContainer"})
	}
	defer cleanup()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// resume the persisted deployments and poll the pool health in background
	go func() {
		if err := cont.orchestrator.Run(ctx); err != nil {
			log.Println(errors.WrapContext(err, errors.Context{Path: "main.run.orchestrator.Run"}))
			stop()
		}
	}()
	go cont.watcher.Watch(ctx)
	grpcSrv, err := runGrpcHealthServer(s.grpcPort)
	if err != nil {
		return err
	}
	defer grpcSrv.GracefulStop()
	return runHttpServer(ctx, cont.router, s)
}

const (
	storeSqlite   = "sqlite"
	storePostgres = "postgres"
)

type settings struct {
	httpPort       string
	grpcPort       string
	crtFile        string
	keyFile        string
	accessKey      string
	groupsFile     string
	store          string
	sqlitePath     string
	dbHost         string
	dbPort         string
	dbUser         string
	dbPassword     string
	dbName         string
	provisionerURL string
	watchDelay     time.Duration
}

func newSettings(c *cli.Context) settings {
	return settings{
		httpPort:       c.String("http-port"),
		grpcPort:       c.String("grpc-port"),
		crtFile:        c.String("https-crt"),
		keyFile:        c.String("https-key"),
		accessKey:      c.String("access-key"),
		groupsFile:     c.String("groups-file"),
		store:          c.String("store"),
		sqlitePath:     c.String("sqlite-path"),
		dbHost:         c.String("db-host"),
		dbPort:         c.String("db-port"),
		dbUser:         c.String("db-user"),
		dbPassword:     c.String("db-password"),
		dbName:         c.String("db-name"),
		provisionerURL: c.String("provisioner-url"),
		watchDelay:     c.Duration("watch-delay"),
	}
}

type container struct {
	watcher      svc.Watcher
	orchestrator *svc.Orchestrator
	router       *httprouter.Router
}

func newContainer(watcher svc.Watcher, orchestrator *svc.Orchestrator, router *httprouter.Router) container {
	return container{
		watcher:      watcher,
		orchestrator: orchestrator,
		router:       router,
	}
}

func newConfig(s settings) (app.Config, error) {
	return config.Load(s.groupsFile)
}

func newAccessKey(s settings) app.ApiAccessKey {
	return app.ApiAccessKey(s.accessKey)
}

func newProvisionerURL(s settings) app.ProvisionerURL {
	return app.ProvisionerURL(s.provisionerURL)
}

func newClock() clock.WithTicker {
	return clock.RealClock{}
}

func newHealthSource(cfg app.Config) app.HealthSource {
	return svc.NewHealthSource(cfg)
}

func newOrchestrator(
	cfg app.Config,
	repo app.StateRepo,
	src app.HealthSource,
	provisioner app.Provisioner,
	clk clock.WithTicker,
) (*svc.Orchestrator, func(), error) {
	o, err := svc.NewOrchestrator(cfg, repo, src, provisioner, clk)
	if err != nil {
		return nil, nil, err
	}
	return o, o.Close, nil
}

func newWatcher(orchestrator app.OrchestratorSvc, s settings, clk clock.WithTicker) svc.Watcher {
	return svc.NewWatcher([]app.WatcherJob{
		{
			Name: "reportMetrics",
			Do:   orchestrator.ReportMetricsJob,
		},
	}, s.watchDelay, clk)
}

func newStateRepo(s settings) (app.StateRepo, func(), error) {
	switch s.store {
	case storeSqlite:
		db, err := sqlite.Open(s.sqlitePath)
		if err != nil {
			return nil, nil, errors.WrapContext(err, errors.Context{Path: "main.newStateRepo.Open"})
		}
		log.Printf("Using SQLite state store %s\n", s.sqlitePath)
		return sqlite.NewState(db), func() { _ = db.Close() }, nil
	case storePostgres:
		pgs := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			s.dbHost,
			s.dbPort,
			s.dbUser,
			s.dbPassword,
			s.dbName,
		)
		conn, err := pgxpool.Connect(context.Background(), pgs)
		if err != nil {
			return nil, nil, errors.WrapContext(err, errors.Context{Path: "main.newStateRepo.Connect"})
		}
		if err = postgres.Migrate(conn); err != nil {
			conn.Close()
			return nil, nil, errors.WrapContext(err, errors.Context{Path: "main.newStateRepo.Migrate"})
		}
		log.Printf("Using PostgreSQL state store %s:%s/%s\n", s.dbHost, s.dbPort, s.dbName)
		return postgres.NewState(conn), conn.Close, nil
	}
	return nil, nil, errors.NewWithContext("unknown state store", errors.Context{
		Path:   "main.newStateRepo",
		Params: errors.Params{"store": s.store},
	})
}

func runGrpcHealthServer(port string) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return nil, errors.WrapContext(err, errors.Context{Path: "main.runGrpcHealthServer.Listen", Params: errors.Params{"port": port}})
	}
	srv := grpc.NewServer()
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	go func() {
		if err := srv.Serve(lis); err != nil {
			log.Println(errors.WrapContext(err, errors.Context{Path: "main.runGrpcHealthServer.Serve"}))
		}
	}()
	log.Printf("Listening :%s for gRPC health checks...\n", port)
	return srv, nil
}

func runHttpServer(ctx context.Context, router *httprouter.Router, s settings) error {
	srv := &http.Server{
		Addr:    ":" + s.httpPort,
		Handler: router,
	}
	errc := make(chan error, 1)
	go func() {
		var err error
		if len(s.crtFile) > 0 {
			err = srv.ListenAndServeTLS(s.crtFile, s.keyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errc <- errors.WrapContext(err, errors.Context{Path: "main.runHttpServer.serve", Params: errors.Params{"port": s.httpPort}})
		}
	}()
	log.Printf("Listening :%s for HTTP connections...\n", s.httpPort)
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Print("Stopping the application...\n")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.WrapContext(err, errors.Context{Path: "main.runHttpServer.Shutdown"})
	}
	return nil
}
