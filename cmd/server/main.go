// Command server exposes the Czech tagger as a JSON REST API.
//
// Endpoints:
//
//	POST /api/tag      body: {"tokens":[...]} or {"text":"..."}
//	GET  /api/lookup?word=<form>
//	GET  /api/healthz
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/Mofl2328/languagetool/internal/logging"
	"github.com/Mofl2328/languagetool/stemmer"
	"github.com/Mofl2328/languagetool/tagging/cs"
)

func main() {
	resources := flag.String("resources", "", "resource root holding cs/czech.dict (default $"+cs.EnvResourceDir+" or ./resource)")
	addr := flag.String("addr", ":8080", "listen address")
	origins := flag.String("cors-origin", "*", "comma-separated list of allowed CORS origins")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	logFormat := flag.String("log-format", "text", "log format: text or json")
	preload := flag.Bool("preload", true, "open the dictionary at startup instead of on the first request")
	flag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		logging.Error("bad flag", "error", err)
		os.Exit(2)
	}
	format, err := logging.ParseFormat(*logFormat)
	if err != nil {
		logging.Error("bad flag", "error", err)
		os.Exit(2)
	}
	logging.InitLogger(level, format, os.Stderr)

	tg := cs.New(*resources)
	defer tg.Close()

	if *preload {
		if err := loadDictionary(tg); err != nil {
			logging.Error("failed to load dictionary", "error", err)
			os.Exit(1)
		}
	}

	c := cors.New(cors.Options{
		AllowedOrigins: splitOrigins(*origins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           c.Handler(withRequestLogging(newMux(tg))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logging.ServerStartup(*addr, "resources", tg.ResourceDir(), "preload", *preload)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Error("server error", "error", err)
		os.Exit(1)
	}
}

// loadDictionary opens the tagger's dictionary and logs what was loaded.
func loadDictionary(tg *cs.Tagger) error {
	start := time.Now()
	if err := tg.Load(); err != nil {
		return err
	}
	d, err := tg.Dictionary()
	if err != nil {
		return err
	}
	if sd, ok := d.(*stemmer.Dictionary); ok {
		info := sd.Info()
		logging.DictionaryLoaded(info.Path, info.Nodes, info.Arcs, info.Checksum, time.Since(start))
	}
	return nil
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
