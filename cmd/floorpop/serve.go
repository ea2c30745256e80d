package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lawnchairsociety/floorpop/internal/inspector"
	"github.com/lawnchairsociety/floorpop/internal/logger"
	"github.com/lawnchairsociety/floorpop/internal/populate"
	"github.com/lawnchairsociety/floorpop/internal/store"
)

var (
	serveLayout string
	serveAddr   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the inspector feed and on-demand floor generation",
	Long: `Start an HTTP server with a websocket feed at /ws that streams every
populated floor summary, and /generate?depth=N&seed=S to populate a floor.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveLayout, "layout", "data/layouts/crypt.yaml", "Path to floor layout YAML file")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: inspector.addr from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(cfg, serveLayout)
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Inspector.Addr
	}

	hub := inspector.NewHub(cfg.Inspector.IsOriginAllowed)
	defer hub.Close()

	observers := []populate.Observer{hub}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
		observers = append(observers, store.HistoryRecorder{Store: st})
	}
	p := populate.New(env.catalog, populate.Options{Tuning: env.tuning, Observers: observers, IndependentFloors: true})

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.Handle("/generate", generateHandler(env, p))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Inspector listening", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("inspector server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Received shutdown signal, gracefully stopping...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// generateHandler populates one floor per request and answers with its JSON
// summary. Connected inspectors receive it through the hub as well.
func generateHandler(env *environment, p *populate.Populator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		depth := 1
		if v := q.Get("depth"); v != "" {
			d, err := strconv.Atoi(v)
			if err != nil || d < 1 {
				http.Error(w, "depth must be a positive integer", http.StatusBadRequest)
				return
			}
			depth = d
		}
		seed := time.Now().UnixNano()
		if v := q.Get("seed"); v != "" {
			s, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				http.Error(w, "seed must be an integer", http.StatusBadRequest)
				return
			}
			seed = s
		}
		final := q.Get("final") == "true"

		req, _ := env.floorRequest(seed, depth, final)
		summary, err := p.Populate(req)
		if err != nil {
			logger.Error("Floor generation failed", "depth", depth, "seed", seed, "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		data, err := summary.JSON()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})
}
