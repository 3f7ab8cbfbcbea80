// Command web initializes the Moodlist-Go application and starts the HTTP
// server. Configuration is provided via environment variables (optionally
// loaded from a .env file) for the Spotify and Gemini API credentials.
// Missing required credentials are fatal at startup so misconfiguration
// surfaces immediately rather than on the first request.

package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"Moodlist-Go/pkg/auth"
	"Moodlist-Go/pkg/db"
	"Moodlist-Go/pkg/gemini"
	"Moodlist-Go/pkg/handlers"
	"Moodlist-Go/pkg/playlist"
	"Moodlist-Go/pkg/session"
	"Moodlist-Go/pkg/spotify"
)

// main configures application dependencies and starts the HTTP server.
func main() {
	log.SetFormatter(&log.JSONFormatter{})

	// A .env file is a development convenience; in production the
	// variables come from the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Info("loaded configuration from .env")
	}

	clientID := os.Getenv("SPOTIFY_CLIENT_ID")
	clientSecret := os.Getenv("SPOTIFY_CLIENT_SECRET")
	redirectURL := os.Getenv("SPOTIFY_REDIRECT_URL")
	geminiKey := os.Getenv("GEMINI_API_KEY")
	signingKey := os.Getenv("SIGNING_KEY")
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		log.Fatal("SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET and SPOTIFY_REDIRECT_URL must be set")
	}
	if geminiKey == "" {
		log.Fatal("GEMINI_API_KEY must be set")
	}
	if signingKey == "" {
		log.Fatal("SIGNING_KEY must be set")
	}

	// The credential store defaults to signed cookies; SESSION_STORE=sqlite
	// switches to a server-side session table so the browser only carries
	// an opaque session id.
	var store session.Store = &session.CookieStore{Key: []byte(signingKey)}
	if os.Getenv("SESSION_STORE") == "sqlite" {
		dbPath := os.Getenv("DATABASE_PATH")
		if dbPath == "" {
			dbPath = "moodlist.db"
		}
		database, err := db.New(dbPath)
		if err != nil {
			log.WithError(err).Fatal("db init")
		}
		defer database.Close()
		store = &db.SessionStore{DB: database, Key: []byte(signingKey)}
	}

	flow := auth.NewFlow(clientID, clientSecret, redirectURL)
	guard := auth.NewGuard(flow, store)
	sc := spotify.NewClient(clientID, clientSecret)
	generator := &gemini.Client{Key: geminiKey}

	app := &handlers.Application{
		Flow:  flow,
		Guard: guard,
		Store: store,
		Pipeline: &playlist.Pipeline{
			Generator: generator,
			Resolver:  sc,
			Assembler: sc,
		},
		Searcher: sc,
		SignKey:  []byte(signingKey),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", app.Home)
	mux.HandleFunc("/login", app.Login)
	mux.HandleFunc("/callback", app.OAuthCallback)
	mux.HandleFunc("/logout", app.Logout)
	mux.HandleFunc("/error", app.ErrorPage)
	mux.HandleFunc("/api/playlist", app.CreatePlaylistJSON)
	mux.HandleFunc("/api/search", app.SearchJSON)
	mux.Handle("/metrics", promhttp.Handler())

	// The route guard wraps the page routes only; API endpoints enforce
	// authentication themselves so they can answer with JSON.
	handler := handlers.SecurityHeaders(handlers.Metrics(app.RequireAuth(mux)))

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":4000"
	}
	log.WithField("addr", addr).Info("starting server")
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.WithError(err).Fatal("http server error")
	}
}
