package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	portal "github.com/hiredesk/portal"
	"github.com/hiredesk/portal/notify"
	"github.com/hiredesk/portal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded:", err)
	}

	cfg := LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("portal"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lgr); err != nil {
		lgr.GetLogger("main").Error("portal exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *Config, lgr *glog.BaseLogger) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := portal.CreateSchema(ctx, db); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "schema creation failed")
	}

	repo := portal.NewRepositoryManager(db)
	if err := repo.Validate(); err != nil {
		return err
	}

	sink, err := buildActivitySink(ctx, cfg, lgr)
	if err != nil {
		return err
	}

	auther := portal.NewAuthenticator(repo, cfg).
		WithLogger(lgr.GetLogger("auth")).
		WithActivitySink(sink).
		WithLoginRecorder(func(ctx context.Context, identity portal.Principal) error {
			if seeker, ok := identity.(*portal.JobSeeker); ok {
				return repo.Seekers().TrackSuccessfulLogin(ctx, seeker)
			}
			return nil
		})

	resolver := portal.NewResolver(auther.TokenService(), repo, lgr.GetLogger("resolver"))

	lifecycle := portal.NewApplicationLifecycle(repo,
		portal.WithLifecycleActivitySink(sink),
		portal.WithLifecycleLogger(lgr.GetLogger("lifecycle")),
	)

	register := portal.NewRegisterPrincipalHandler(repo,
		portal.WithRegisterActivitySink(sink),
		portal.WithRegisterLogger(lgr.GetLogger("register")),
	)

	resumes, err := buildResumeStore(cfg)
	if err != nil {
		return err
	}

	api := portal.NewAPI(portal.APIDeps{
		Repo:        repo,
		Auther:      auther,
		Resolver:    resolver,
		Lifecycle:   lifecycle,
		Register:    register,
		Resumes:     resumes,
		Sink:        sink,
		Logger:      lgr.GetLogger("http"),
		PhoneRegion: cfg.PhoneRegion,
	})

	sweeper := portal.NewDeadlineSweeper(repo.Jobs(), cfg.SweepSpec, sink, lgr.GetLogger("sweeper"))
	if err := sweeper.Start(ctx); err != nil {
		return err
	}
	defer sweeper.Stop()

	app := portal.NewApp(lgr.GetLogger("http"))
	api.RegisterRoutes(app)

	errCh := make(chan error, 1)
	go func() {
		lgr.GetLogger("main").Info("portal listening", "addr", cfg.HTTPAddr)
		errCh <- app.Listen(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		lgr.GetLogger("main").Info("shutting down")
		return app.Shutdown()
	case err := <-errCh:
		return err
	}
}

func openDatabase(cfg *Config) (*bun.DB, error) {
	if cfg.DatabaseDSN != "" {
		sqldb, err := sql.Open("pgx", cfg.DatabaseDSN)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "postgres open failed")
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.SQLitePath)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "sqlite open failed")
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

func buildActivitySink(ctx context.Context, cfg *Config, lgr *glog.BaseLogger) (portal.ActivitySink, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}

	rdb, err := notify.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	return notify.NewRedisSink(rdb, cfg.ActivityChannel, lgr.GetLogger("notify")), nil
}

func buildResumeStore(cfg *Config) (storage.ResumeStore, error) {
	if cfg.SupabaseURL != "" && cfg.SupabaseKey != "" {
		return storage.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket)
	}
	return storage.NewLocalStore(cfg.ResumeDir)
}
