// Command atlasd runs the standalone Atlas server: a websocket gateway over
// the session registry, backed by a SQL store for the corpus, leaderboards,
// suggestions, and crash-recovery snapshots.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"atlas/internal/app"
	"atlas/internal/bot"
	"atlas/internal/config"
	"atlas/internal/geo"
	"atlas/internal/ports/ws"
	"atlas/internal/session"
	"atlas/internal/store"
)

// stdLogger adapts the standard logger to the session runtime's interface.
type stdLogger struct {
	l *log.Logger
}

func (s stdLogger) Debug(format string, v ...interface{}) { s.l.Printf("DEBUG "+format, v...) }
func (s stdLogger) Info(format string, v ...interface{})  { s.l.Printf("INFO "+format, v...) }
func (s stdLogger) Warn(format string, v ...interface{})  { s.l.Printf("WARN "+format, v...) }
func (s stdLogger) Error(format string, v ...interface{}) { s.l.Printf("ERROR "+format, v...) }

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		log.Fatalf("load environment: %v", err)
	}
	if err := config.LoadGameConfig(env.GameConfigPath); err != nil {
		log.Printf("game config: %v (running with defaults)", err)
	}

	st, err := store.Open(env)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if env.CorpusPath != "" {
		if err := seedIfEmpty(ctx, st, env.CorpusPath); err != nil {
			log.Fatalf("seed corpus: %v", err)
		}
	}
	names, err := st.CorpusNames(ctx)
	if err != nil {
		log.Fatalf("load corpus: %v", err)
	}
	if len(names) == 0 {
		log.Fatal("corpus is empty; run the seed command or set ATLAS_CORPUS_PATH")
	}
	index, err := geo.Build(names)
	if err != nil {
		log.Fatalf("build name index: %v", err)
	}
	log.Printf("indexed %d place names", len(names))

	svc := app.NewService(index, app.Rules{
		MaxStrikes:        config.StrikeLimit(),
		MinPlayers:        config.MinPlayers(),
		ForbidDeadLetters: config.ForbidDeadLetters(),
	})

	botLevel := bot.BotLevelEasy
	if gc := config.GetGameConfig(); gc != nil && gc.BotLevel == "smart" {
		botLevel = bot.BotLevelSmart
	}
	minDelay, maxDelay := config.BotDelays()

	logger := stdLogger{log.New(os.Stdout, "", log.LstdFlags)}
	gateway := ws.NewGateway(st, st, logger)
	registry := session.NewRegistry(svc, session.Config{
		TurnDuration: config.TurnDuration(),
		BotMinDelay:  minDelay,
		BotMaxDelay:  maxDelay,
		BotLevel:     botLevel,
	}, gateway, st, st, logger)
	gateway.Bind(registry)

	if err := registry.Restore(ctx); err != nil {
		log.Printf("restore sessions: %v", err)
	} else if n := registry.Len(); n > 0 {
		log.Printf("restored %d sessions", n)
	}

	srv := &http.Server{Addr: env.ListenAddr, Handler: gateway.Handler()}
	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		log.Print("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on %s (ws endpoint: /ws)", env.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("serve: %v", err)
	}
	gateway.Close()
}

// seedIfEmpty loads the corpus file into the store on first run only.
func seedIfEmpty(ctx context.Context, st *store.SQLStore, path string) error {
	count, err := st.CountPlaces(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	names, err := geo.LoadNamesFile(path)
	if err != nil {
		return err
	}
	added, err := st.SeedCorpus(ctx, names)
	if err != nil {
		return err
	}
	log.Printf("seeded %d places from %s", added, path)
	return nil
}
