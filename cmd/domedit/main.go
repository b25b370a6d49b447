package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/domedit/editsvc"
	"github.com/hazyhaar/domedit/inspector"
	"github.com/hazyhaar/domedit/safeio"
	"github.com/hazyhaar/domedit/shield"
)

func main() {
	port := env("PORT", "8090")
	configPath := env("DOMEDIT_CONFIG", "")
	mcpTransport := env("MCP_TRANSPORT", "")
	logLevel := env("LOG_LEVEL", "info")

	// Logging.
	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Configuration: YAML file when given, env overrides on top.
	cfg := &editsvc.Config{}
	if configPath != "" {
		c, err := editsvc.LoadConfigFile(configPath)
		if err != nil {
			slog.Error("load config", "path", configPath, "error", err)
			os.Exit(1)
		}
		cfg = c
	}
	if v := os.Getenv("PROJECT_ROOT"); v != "" {
		cfg.ProjectRoot = v
	}
	if v := os.Getenv("DOMEDIT_DB"); v != "" {
		cfg.DBPath = v
	}

	// Edit service (opens the journal DB, applies schema).
	svc, err := editsvc.New(cfg, logger)
	if err != nil {
		slog.Error("editsvc", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	// Optional inspector: INSPECTOR=local launches Chrome, ws://... URLs
	// connect to a remote instance.
	var insp *inspector.Inspector
	if mode := os.Getenv("INSPECTOR"); mode != "" {
		icfg := inspector.Config{Stealth: os.Getenv("INSPECTOR_STEALTH") == "1"}
		if mode != "local" {
			icfg.RemoteURL = mode
		}
		insp = inspector.New(icfg, logger)
		if err := insp.Start(ctx); err != nil {
			slog.Error("inspector start", "error", err)
			insp = nil
		} else {
			defer insp.Close()
		}
	}

	// MCP stdio: the process is owned by an MCP client; no HTTP.
	if mcpTransport == "stdio" {
		mcpSrv := mcp.NewServer(&mcp.Implementation{
			Name:    "domedit",
			Version: "1.0.0",
		}, nil)
		svc.RegisterMCP(mcpSrv)
		if insp != nil {
			insp.RegisterMCP(mcpSrv)
		}
		slog.Info("MCP stdio starting")
		if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			slog.Error("MCP stdio", "error", err)
			os.Exit(1)
		}
		return
	}

	// Bearer token: a bcrypt hash via API_TOKEN_HASH, or a plain token
	// hashed at boot.
	tokenHash := os.Getenv("API_TOKEN_HASH")
	if tokenHash == "" {
		plain := os.Getenv("API_TOKEN")
		if plain == "" {
			slog.Error("API_TOKEN_HASH or API_TOKEN is required")
			os.Exit(1)
		}
		if err := safeio.ValidateSecret([]byte(plain)); err != nil {
			slog.Error("API_TOKEN too short", "error", err)
			os.Exit(1)
		}
		h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
		if err != nil {
			slog.Error("hash token", "error", err)
			os.Exit(1)
		}
		tokenHash = string(h)
	}

	// Router.
	r := chi.NewRouter()
	for _, mw := range shield.Stack(cfg.MaxFileBytes + 64*1024) {
		r.Use(mw)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(requireToken(tokenHash))

		r.Post("/api/patch", func(w http.ResponseWriter, r *http.Request) {
			var req editsvc.EditRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, 400, err)
				return
			}
			res, err := svc.Apply(r.Context(), req)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, 200, res)
		})

		r.Post("/api/patch/preview", func(w http.ResponseWriter, r *http.Request) {
			var req editsvc.EditRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, 400, err)
				return
			}
			res, err := svc.Preview(r.Context(), req)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, 200, res)
		})

		r.Get("/api/patches", func(w http.ResponseWriter, r *http.Request) {
			hist, err := svc.History(r.Context(), r.URL.Query().Get("file"), queryInt(r, "limit", 0))
			if err != nil {
				writeError(w, 500, err)
				return
			}
			writeJSON(w, 200, hist)
		})

		r.Post("/api/patches/{id}/undo", func(w http.ResponseWriter, r *http.Request) {
			rec, err := svc.Undo(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, 200, rec)
		})

		r.Post("/api/inspect", func(w http.ResponseWriter, r *http.Request) {
			if insp == nil {
				writeJSON(w, 503, map[string]string{"error": "inspector not enabled"})
				return
			}
			var req struct {
				URL      string `json:"url"`
				Selector string `json:"selector"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, 400, err)
				return
			}
			desc, err := insp.Describe(r.Context(), req.URL, req.Selector)
			if errors.Is(err, inspector.ErrNoElement) {
				writeError(w, 404, err)
				return
			}
			if err != nil {
				writeError(w, 500, err)
				return
			}
			writeJSON(w, 200, desc)
		})
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		slog.Info("domedit listening", "port", port, "project_root", cfg.ProjectRoot)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutCancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		slog.Warn("shutdown", "error", err)
	}
	slog.Info("domedit stopped")
}

// requireToken enforces a Bearer token checked against the bcrypt hash.
func requireToken(hash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
				writeJSON(w, 401, map[string]string{"error": "missing bearer token"})
				return
			}
			if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(auth[len(prefix):])); err != nil {
				writeJSON(w, 401, map[string]string{"error": "invalid token"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, editsvc.ErrInvalidInput):
		writeError(w, 400, err)
	case errors.Is(err, editsvc.ErrNotFound):
		writeError(w, 404, err)
	case errors.Is(err, editsvc.ErrFileChanged), errors.Is(err, editsvc.ErrAlreadyReverted):
		writeError(w, 409, err)
	case errors.Is(err, editsvc.ErrDeclined):
		writeError(w, 422, err)
	default:
		writeError(w, 500, err)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
