// Command oauth-init mints the OAuth token used by the Google Sheets ledger
// export. It serves a local callback, prints the authorization URL and writes
// the exchanged token to GOOGLE_OAUTH_TOKEN_FILE (token.json by default).
// The OAuth client must list the callback URL among its authorized redirect
// URIs.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

const authTimeout = 5 * time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := clientConfig()
	if err != nil {
		log.Fatal(err)
	}

	port := os.Getenv("OAUTH_REDIRECT_PORT")
	if port == "" {
		port = "8085"
	}
	cfg.RedirectURL = "http://localhost:" + port + "/callback"

	code, err := authorize(ctx, cfg, port)
	if err != nil {
		log.Fatal(err)
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		log.Fatalf("exchange authorization code: %v", err)
	}

	path, err := saveToken(tok)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Token written to %s\n", path)
}

// clientConfig reads the OAuth client from GOOGLE_OAUTH_CLIENT_JSON or
// GOOGLE_OAUTH_CLIENT_FILE, the same pair the sheets client honors.
func clientConfig() (*oauth2.Config, error) {
	raw := []byte(os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"))
	if len(raw) == 0 {
		file := os.Getenv("GOOGLE_OAUTH_CLIENT_FILE")
		if file == "" {
			return nil, errors.New("set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE")
		}
		var err error
		raw, err = os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read OAuth client file: %w", err)
		}
	}

	cfg, err := google.ConfigFromJSON(raw, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse OAuth client: %w", err)
	}
	return cfg, nil
}

// authorize serves the callback and blocks until the browser flow delivers
// an authorization code, the timeout elapses or ctx is cancelled.
func authorize(ctx context.Context, cfg *oauth2.Config, port string) (string, error) {
	type outcome struct {
		code string
		err  error
	}
	results := make(chan outcome, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if reason := q.Get("error"); reason != "" {
			http.Error(w, "authorization refused: "+reason, http.StatusBadRequest)
			results <- outcome{err: fmt.Errorf("authorization refused: %s", reason)}
			return
		}
		fmt.Fprintln(w, "Authorized. You can close this tab.")
		results <- outcome{code: q.Get("code")}
	})

	srv := &http.Server{Addr: ":" + port, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			results <- outcome{err: fmt.Errorf("callback server: %w", err)}
		}
	}()
	defer srv.Close()

	fmt.Printf("Visit this URL to authorize the ledger export:\n\n  %s\n\n",
		cfg.AuthCodeURL("jornada", oauth2.AccessTypeOffline))

	select {
	case res := <-results:
		return res.code, res.err
	case <-time.After(authTimeout):
		return "", errors.New("timed out waiting for authorization")
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func saveToken(tok *oauth2.Token) (string, error) {
	path := os.Getenv("GOOGLE_OAUTH_TOKEN_FILE")
	if path == "" {
		path = "token.json"
	}

	raw, err := json.Marshal(tok)
	if err != nil {
		return "", fmt.Errorf("encode token: %w", err)
	}
	if err := os.WriteFile(path, raw, 0600); err != nil {
		return "", fmt.Errorf("write token: %w", err)
	}
	return path, nil
}
