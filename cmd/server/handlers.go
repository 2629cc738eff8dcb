package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Mofl2328/languagetool"
	"github.com/Mofl2328/languagetool/internal/logging"
	"github.com/Mofl2328/languagetool/tagging/cs"
)

// maxBodyBytes bounds POST /api/tag request bodies.
const maxBodyBytes = 1 << 20

// ---- JSON types ---------------------------------------------------------

type readingJSON struct {
	Tag      string `json:"tag,omitempty"`
	Lemma    string `json:"lemma,omitempty"`
	StartPos *int   `json:"start_pos,omitempty"`
}

type tokenJSON struct {
	Token    string        `json:"token"`
	StartPos int           `json:"start_pos"`
	Readings []readingJSON `json:"readings"`
}

type tagRequest struct {
	Tokens         []string `json:"tokens"`
	Text           string   `json:"text"`
	SkipWhitespace bool     `json:"skip_whitespace"`
}

type tagResponse struct {
	Tokens []tokenJSON `json:"tokens"`
}

type entryJSON struct {
	Lemma string   `json:"lemma"`
	Tag   string   `json:"tag"`
	Tags  []string `json:"tags"`
}

type lookupResponse struct {
	Word      string      `json:"word"`
	Entries   []entryJSON `json:"entries"`
	Lowercase []entryJSON `json:"lowercase,omitempty"`
}

type statusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ---- helpers ------------------------------------------------------------

func toTokenJSON(r languagetool.AnalyzedTokenReadings) tokenJSON {
	out := tokenJSON{
		Token:    r.Token,
		StartPos: r.StartPos,
		Readings: make([]readingJSON, 0, len(r.Readings)),
	}
	for _, a := range r.Readings {
		if !a.HasPOSTag() {
			pos := a.StartPos
			out.Readings = append(out.Readings, readingJSON{StartPos: &pos})
			continue
		}
		out.Readings = append(out.Readings, readingJSON{Tag: a.POSTag, Lemma: a.Lemma})
	}
	return out
}

func toEntriesJSON(entries []cs.Entry) []entryJSON {
	out := make([]entryJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryJSON{
			Lemma: e.Lemma,
			Tag:   e.Tag,
			Tags:  strings.Split(e.Tag, "+"),
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// ---- handlers -----------------------------------------------------------

func handleTag(tg *cs.Tagger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "POST required")
			return
		}
		var req tagRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		tokens := req.Tokens
		switch {
		case len(tokens) > 0 && req.Text != "":
			writeError(w, http.StatusBadRequest, "give either 'tokens' or 'text', not both")
			return
		case len(tokens) == 0 && req.Text == "":
			writeError(w, http.StatusBadRequest, "body must have a non-empty 'tokens' or 'text' field")
			return
		case req.Text != "":
			tokens = languagetool.Tokenize(req.Text)
		}

		readings, err := tg.Tag(tokens)
		if err != nil {
			logging.ErrorContext(r.Context(), "tagging failed", "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		out := make([]tokenJSON, 0, len(readings))
		for _, rd := range readings {
			if req.SkipWhitespace && rd.IsWhitespace() {
				continue
			}
			out = append(out, toTokenJSON(rd))
		}
		writeJSON(w, http.StatusOK, tagResponse{Tokens: out})
	}
}

func handleLookup(tg *cs.Tagger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "GET required")
			return
		}
		word := r.URL.Query().Get("word")
		if word == "" {
			writeError(w, http.StatusBadRequest, "missing 'word' query parameter")
			return
		}
		entries, err := tg.Lookup(word)
		if err != nil {
			logging.ErrorContext(r.Context(), "lookup failed", "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp := lookupResponse{Word: word, Entries: toEntriesJSON(entries)}
		if lower := strings.ToLower(word); lower != word {
			lowerEntries, err := tg.Lookup(lower)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			resp.Lowercase = toEntriesJSON(lowerEntries)
		}

		status := http.StatusOK
		if len(resp.Entries) == 0 && len(resp.Lowercase) == 0 {
			status = http.StatusNotFound
		}
		writeJSON(w, status, resp)
	}
}

func handleHealth(tg *cs.Tagger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := tg.Load(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "unavailable", Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
	}
}

// ---- middleware ---------------------------------------------------------

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// withRequestLogging tags each request with an ID (the caller's
// X-Request-ID or a fresh UUID) and logs it once it completes.
func withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := logging.WithRequestID(r.Context(), id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))
		logging.HTTPRequestContext(ctx, r.Method, r.URL.Path, r.RemoteAddr, rec.status, time.Since(start))
	})
}

// newMux wires the API routes.
func newMux(tg *cs.Tagger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tag", handleTag(tg))
	mux.HandleFunc("/api/lookup", handleLookup(tg))
	mux.HandleFunc("/api/healthz", handleHealth(tg))
	return mux
}
