package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/storeratings/storeratings-backend/pkg/logger"
)

const readHeaderTimeout = 10 * time.Second

// Serve runs handler on addr until ctx is cancelled, then drains in-flight
// requests for at most shutdownTimeout.
func Serve(ctx context.Context, logg *logger.Logger, addr string, handler http.Handler, shutdownTimeout time.Duration) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	if logg != nil {
		logg.Info(ctx, "api server draining")
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
