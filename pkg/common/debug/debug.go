// Package debug provides the debug HTTP handlers: pprof profiles and a
// statsviz runtime dashboard, useful while a long benchmark is running.
package debug

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/arl/statsviz"

	"github.com/ahrav/progress-tally/pkg/common/logger"
)

// Mux registers all the debug routes from the standard library into a new
// mux, bypassing the use of the DefaultServerMux, and adds the statsviz
// dashboard under /debug/statsviz/.
func Mux() (*http.ServeMux, error) {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	if err := statsviz.Register(mux); err != nil {
		return nil, fmt.Errorf("registering statsviz: %w", err)
	}

	return mux, nil
}

// Start serves the debug mux on addr until ctx is done.
func Start(ctx context.Context, log *logger.Logger, addr string) error {
	mux, err := Mux()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          logger.NewStdLogger(log, logger.LevelError),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		log.Info(ctx, "startup", "status", "debug router started", "host", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "shutdown", "status", "debug router closed", "host", addr, "msg", err)
		}
	}()

	return nil
}
