package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sourcegraph/conc/pool"

	server "github.com/kazz187/labelguild/internal"
	"github.com/kazz187/labelguild/internal/config"
	"github.com/kazz187/labelguild/internal/event"
	"github.com/kazz187/labelguild/internal/eventbus"
	"github.com/kazz187/labelguild/internal/kafka"
	"github.com/kazz187/labelguild/internal/lifecycle"
	"github.com/kazz187/labelguild/internal/project"
	projectrepo "github.com/kazz187/labelguild/internal/project/repositoryimpl"
	"github.com/kazz187/labelguild/internal/pushnotification"
	pushsubrepo "github.com/kazz187/labelguild/internal/pushsubscription/repositoryimpl"
	"github.com/kazz187/labelguild/internal/task"
	taskrepo "github.com/kazz187/labelguild/internal/task/repositoryimpl"
	"github.com/kazz187/labelguild/internal/tasklog"
	tasklogrepo "github.com/kazz187/labelguild/internal/tasklog/repositoryimpl"
	"github.com/kazz187/labelguild/pkg/clog"
	"github.com/kazz187/labelguild/pkg/panicerr"
	"github.com/kazz187/labelguild/pkg/storage"
)

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}

	// Setup logger
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewConnectTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// Setup storage. Postgres only holds tasks; everything else stays in
	// the YAML store.
	var store storage.Storage
	switch env.StorageEnv.Type {
	case "s3":
		store, err = storage.NewS3Storage(ctx, env.StorageEnv.S3Bucket, env.StorageEnv.S3Prefix, env.StorageEnv.S3Region)
		if err != nil {
			fatal("failed to create S3 storage", err)
		}
	default:
		store, err = storage.NewLocalStorage(env.StorageEnv.BaseDir)
		if err != nil {
			fatal("failed to create local storage", err)
		}
	}

	var pingers []server.Pinger
	var taskRepo task.Repository
	if env.StorageEnv.Type == "postgres" {
		pg, err := taskrepo.NewPostgresRepository(ctx, env.DatabaseURL)
		if err != nil {
			fatal("failed to connect postgres", err)
		}
		defer pg.Close()
		taskRepo = pg
		pingers = append(pingers, pg)
	} else {
		taskRepo = taskrepo.NewYAMLRepository(store)
	}

	if env.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: env.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Warn("redis unreachable, reads fall through to the task store", "addr", env.RedisAddr, "error", err)
		}
		taskRepo = taskrepo.NewCachedRepository(taskRepo, rdb, env.CacheEnv.TTL)
		pingers = append(pingers, redisPinger{client: rdb})
	}

	bus := eventbus.New()

	projectRepo := projectrepo.NewYAMLRepository(store)
	taskLogRepo := tasklogrepo.NewYAMLRepository(store)
	pushSubRepo := pushsubrepo.NewYAMLRepository(store)

	if env.CatalogEnv.Path != "" {
		if err := project.Sync(ctx, projectRepo, env.CatalogEnv.Path); err != nil {
			fatal("failed to load project catalog", err)
		}
	}

	// Setup servers
	lifecycleService := lifecycle.NewService(taskRepo, projectRepo, bus)
	taskServer := lifecycle.NewServer(lifecycleService, taskRepo, tasklog.NewServer(taskLogRepo))
	eventServer := event.NewServer(bus)

	vapidEnv := config.VAPIDEnvFromEnv(env)
	pushSender := pushnotification.NewSender(vapidEnv, pushSubRepo)
	pushNotificationServer := pushnotification.NewServer(vapidEnv, pushSubRepo)

	srv := server.NewServer(env, projectRepo, taskServer, eventServer, pushNotificationServer, pingers...)

	// Background workers. Any of them failing shuts the server down.
	workers := pool.New().WithContext(ctx)
	run := func(name string, w panicerr.Worker) {
		workers.Go(func(ctx context.Context) error {
			err := panicerr.Guard(name, w)(ctx)
			if err != nil {
				slog.Error("background worker stopped", "worker", name, "error", err)
				cancel()
			}
			return err
		})
	}

	run("task log recorder", panicerr.Loop(tasklog.NewRecorder(bus, taskLogRepo).Start))
	if pushSender.Configured() {
		run("push dispatcher", panicerr.Loop(pushnotification.NewDispatcher(bus, pushSender).Start))
	}
	if brokers := env.BrokerList(); len(brokers) > 0 {
		producer, err := kafka.NewSyncProducer(brokers)
		if err != nil {
			fatal("failed to connect kafka", err)
		}
		exporter := kafka.NewExporter(bus, producer, env.KafkaEnv.Topic)
		defer exporter.Close()
		run("kafka exporter", panicerr.Loop(exporter.Start))
	}
	if env.CatalogEnv.Path != "" && env.CatalogEnv.Watch {
		run("catalog watcher", project.NewWatcher(projectRepo, env.CatalogEnv.Path).Run)
	}

	go func() {
		if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	// Give active connections time to finish after stream contexts are cancelled.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	if err := workers.Wait(); err != nil {
		slog.Error("background workers exited with error", "error", err)
	}
}
