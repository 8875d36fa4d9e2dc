package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pretzelhammer/drawduel/internal/game"
	"github.com/pretzelhammer/drawduel/internal/httpapi"
	"github.com/pretzelhammer/drawduel/internal/hub"
)

func main() {
	_ = godotenv.Load()

	dev := os.Getenv("DRAWDUEL_ENV") == "development"

	var logger *zap.Logger
	var err error
	if dev {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	rules := game.DefaultRules()
	if dev {
		// short games while iterating locally
		rules.MaxRounds = 2
		rules.UnreadyPlayerWaitSec = 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := hub.NewHub(ctx, hub.Config{
		Rules:  rules,
		Clock:  clockwork.NewRealClock(),
		Rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		Logger: logger,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "9001"
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano() + 1))
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: httpapi.SetupRoutes(h, logger, rng),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		h.Inbox() <- hub.ShutdownHub{}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
