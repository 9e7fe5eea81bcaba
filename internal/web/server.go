package web

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/yjkogan/stuff-tracker/internal/back"
	"github.com/yjkogan/stuff-tracker/internal/config"
	"github.com/yjkogan/stuff-tracker/internal/util"
	"golang.org/x/time/rate"
)

func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/", noContent)
	r.Post("/api/login", s.login)
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.config.UploadDir))))

	r.Group(func(r chi.Router) {
		r.Use(s.authenticator)

		r.Get("/api/items", s.getItems)
		r.Post("/api/items", s.postItem)
		r.Get("/api/items/{id}", s.getItem)
		r.Patch("/api/items/{id}", s.patchItem)
		r.Delete("/api/items/{id}", s.deleteItem)
		r.Get("/api/items/{id}/comparisons", s.getItemComparisons)

		r.Get("/api/categories", s.getCategories)
		r.Get("/api/pair", s.getPair)
		r.Post("/api/comparisons", s.postComparison)
		r.Post("/api/upload", s.postUpload)
	})

	return r
}

type Server struct {
	http   *http.Server
	back   *back.Back
	config *config.Config

	// Throttles login attempts across all clients.
	loginLimiter *rate.Limiter
}

func NewServer(back *back.Back, conf *config.Config) *Server {
	s := &Server{
		back:         back,
		config:       conf,
		loginLimiter: rate.NewLimiter(rate.Every(time.Second), 10),
	}

	s.http = &http.Server{
		Addr:         conf.ListenAddr,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
		Handler:      s.setupRouter(),
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// Serve runs the HTTP server until done is closed, the caller must have added
// one to wg beforehand.
func (s *Server) Serve(wg *sync.WaitGroup, done <-chan struct{}) {
	log.Printf("info: starting HTTP server on %s", s.http.Addr)
	defer wg.Done()

	go func() {
		err := s.http.ListenAndServe()
		if err == http.ErrServerClosed {
			log.Println("info: HTTP server closed")
			return
		}

		log.Fatalf("webserver crashed: %s", err)
	}()

	<-done
	if err := s.http.Close(); err != nil {
		log.Printf("warning: unable to close webserver: %s", err)
	}
}

func (s *Server) response(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	response, err := json.Marshal(data)
	if err != nil {
		log.Printf("error: unable to marshal response: %s", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(code)

	if _, err := w.Write(response); err != nil {
		log.Printf("error: unable to send response: %s", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError sends err to the client with the status code matching its kind,
// internal errors are logged and replaced by a generic message.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, sql.ErrNoRows):
		code = http.StatusNotFound
	case util.IsPublic(err):
		code = http.StatusBadRequest
	}

	s.writeErrorCode(w, err, code)
}

func (s *Server) writeErrorCode(w http.ResponseWriter, err error, code int) {
	msg := err.Error()
	switch {
	case code == http.StatusNotFound:
		msg = "not found"
	case code >= 500:
		log.Printf("error: %s", err)
		msg = http.StatusText(code)
	default:
		log.Printf("debug: %d: %s", code, err)
	}

	s.response(w, code, errorResponse{Error: msg})
}

const maxJSONBodySize = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return util.ErrPublic(fmt.Sprintf("invalid request body: %s", err))
	}

	return nil
}
