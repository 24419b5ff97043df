package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/spt/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin runs the OAuth2 authorization-code flow: it prints the
// authorization URL, captures the redirect on a local listener and caches
// the exchanged token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: configure Spotify credentials first (see: spt setup config)", shared.ErrMissingCredentials)
	}

	redirect, err := url.Parse(r.config.Credentials.Spotify.RedirectURI)
	if err != nil {
		return fmt.Errorf("%w: invalid redirect_uri: %v", shared.ErrInvalidConfig, err)
	}

	state := shared.GenerateID()
	authURL := r.spotify.GetAuthURL(state)

	r.writePlain("Open the following URL in your browser:\n\n  %s\n\n", authURL)
	r.logger.Info("waiting for authorization", "listen", redirect.Host)

	code, err := waitForCallback(ctx, redirect, state)
	if err != nil {
		return err
	}

	if err := r.spotify.Exchange(ctx, code); err != nil {
		return err
	}

	r.logger.Info("token cached", "path", r.config.Credentials.Spotify.TokenPath)
	return r.writePlain("✓ Authentication successful\n")
}

// waitForCallback serves the OAuth redirect endpoint until one
// authorization code arrives or the context is cancelled.
func waitForCallback(ctx context.Context, redirect *url.URL, state string) (string, error) {
	type callback struct {
		code string
		err  error
	}
	results := make(chan callback, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(redirect.Path, func(w http.ResponseWriter, req *http.Request) {
		query := req.URL.Query()

		if query.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			results <- callback{err: fmt.Errorf("%w: state mismatch in callback", shared.ErrAuthFailed)}
			return
		}
		if errCode := query.Get("error"); errCode != "" {
			http.Error(w, "authorization denied", http.StatusBadRequest)
			results <- callback{err: fmt.Errorf("%w: %s", shared.ErrAuthFailed, errCode)}
			return
		}

		fmt.Fprintln(w, "Authentication complete. You can close this tab.")
		results <- callback{code: query.Get("code")}
	})

	server := &http.Server{Addr: redirect.Host, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			results <- callback{err: fmt.Errorf("%w: callback listener failed: %v", shared.ErrAuthFailed, err)}
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	select {
	case result := <-results:
		return result.code, result.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// AuthStatus reports the cached token state without touching the network.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: configure Spotify credentials first (see: spt setup config)", shared.ErrMissingCredentials)
	}

	exists, valid := r.spotify.TokenStatus()
	switch {
	case !exists:
		return r.writePlain("✗ Not authenticated (run: spt auth login)\n")
	case !valid:
		return r.writePlain("✗ Token expired and not refreshable (run: spt auth login)\n")
	default:
		return r.writePlain("✓ Authenticated\n")
	}
}
