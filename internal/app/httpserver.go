package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/reachhk/engage/internal/logging"
	"github.com/reachhk/engage/internal/metrics"
)

const healthTimeout = 800 * time.Millisecond

// Check: одна проверка живости для /healthz (db, redis).
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

type HTTPServer struct {
	srv *http.Server
}

// NewHandler serves /healthz and /metrics only.
func NewHandler(checks ...Check) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		for _, c := range checks {
			if err := c.Ping(ctx); err != nil {
				http.Error(w, c.Name+" not ok: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", metrics.Handler())
	return mux
}

func StartHTTP(ctx context.Context, addr string, log *zap.Logger, checks ...Check) *HTTPServer {
	log = logging.OrNop(log)
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewHandler(checks...),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		// закрываем аккуратно при Shutdown
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	log.Info("http server listening", zap.String("addr", addr))
	return &HTTPServer{srv: srv}
}

func (s *HTTPServer) Addr() string { return s.srv.Addr }
