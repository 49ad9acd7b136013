// Package main 长篇书籍批量生成器入口（bookgen）
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"bookgen/internal/application/generation"
	"bookgen/internal/catalog"
	"bookgen/internal/config"
	"bookgen/internal/infrastructure/ollama"
	"bookgen/internal/infrastructure/persistence/bookfile"
	apperrors "bookgen/pkg/errors"
	"bookgen/pkg/logger"
	"bookgen/pkg/tracer"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return apperrors.ExitFailure
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: cfg.App.Name,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Error(ctx, "failed to init tracer", err)
		return apperrors.ExitFailure
	}
	defer func() { _ = shutdown(context.Background()) }()

	runID := uuid.NewString()
	ctx = logger.WithContext(ctx, logger.RunIDKey, runID)

	client := ollama.NewClient(ollama.Config{
		Endpoint: cfg.Ollama.Endpoint,
		Model:    cfg.Ollama.Model,
		Timeout:  cfg.Ollama.Timeout,
		Retries:  cfg.Ollama.Retries,
		Seed:     cfg.Generation.Seed,
	})

	// 服务不可达时直接终止整个运行，不值得开始任何一本书
	if err := client.Health(ctx); err != nil {
		logger.Error(ctx, "generation service unreachable", err)
		return apperrors.ExitStatus(err)
	}
	logger.Info(ctx, "generation service reachable",
		"endpoint", client.Endpoint(),
		"model", client.Model(),
		"output_dir", cfg.Output.Dir,
	)

	books, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logger.Error(ctx, "failed to load book catalog", err)
		return apperrors.ExitFailure
	}

	store, err := bookfile.NewStore(cfg.Output.Dir)
	if err != nil {
		logger.Error(ctx, "failed to init output store", err)
		return apperrors.ExitFailure
	}

	producer := generation.NewChapterProducer(client, cfg.Generation.TargetChapterWords)
	engine := generation.NewContinuityEngine(client)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Observability.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Observability.Metrics.Path, promhttp.Handler())
		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Observability.Metrics.Port),
			Handler: mux,
		}
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer scancel()
			return srv.Shutdown(sctx)
		})
	}

	g.Go(func() error {
		// 生成结束后取消根 context，联动关闭指标端点
		defer cancel()
		return generateAll(gctx, cfg, client, store, producer, engine, books, runID)
	})

	if err := g.Wait(); err != nil {
		if apperrors.ExitStatus(err) == apperrors.ExitInterrupted {
			logger.Warn(ctx, "interrupted by user")
		} else {
			logger.Error(ctx, "generation run failed", err)
		}
		return apperrors.ExitStatus(err)
	}

	return apperrors.ExitOK
}

// generateAll 严格顺序地逐本生成目录中的书籍
func generateAll(
	ctx context.Context,
	cfg *config.Config,
	client *ollama.Client,
	store *bookfile.Store,
	producer *generation.ChapterProducer,
	engine *generation.ContinuityEngine,
	books []catalog.BookSpec,
	runID string,
) error {
	for i := range books {
		spec := &books[i]
		logger.Info(ctx, "starting book generation", "title", spec.Title, "genre", spec.Genre)

		ctrl := generation.NewBookController(producer, engine, store, generation.ControllerConfig{
			MinWords:    cfg.Generation.MinWords,
			MaxChapters: cfg.Generation.MaxChapters,
			Model:       client.Model(),
			Endpoint:    client.Endpoint(),
			RunID:       runID,
		})
		path, err := ctrl.Run(ctx, spec)
		if err != nil {
			return err
		}
		logger.Info(ctx, "book completed", "title", spec.Title, "manuscript", path)
	}

	logger.Info(ctx, "all books generated successfully")
	return nil
}
