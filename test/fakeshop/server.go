/*
Copyright 2026 the GoShop Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package fakeshop is an in-memory stand-in for the GoShop API. It follows
// the public contract closely enough for the harness to test itself and for
// the suites to run without a deployment, it is not a reference for the
// real server's behaviour beyond that contract.
package fakeshop

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type user struct {
	id       int64
	uuid     string
	email    string
	password string
	name     *string
	phone    *string
	role     string
}

type category struct {
	id          int64
	uuid        string
	name        string
	description *string
}

type product struct {
	id          int64
	uuid        string
	name        string
	description *string
	price       decimal.Decimal
	stock       int
	categoryIDs []int64
	createdAt   time.Time
	updatedAt   time.Time
}

// Options configure the server.
type Options struct {
	// AdminEmail and AdminPassword seed an administrator, leave the email
	// empty to start without one.
	AdminEmail    string
	AdminPassword string
	// Logger receives a line per request at verbosity 1.
	Logger logr.Logger
}

// DefaultOptions seed the administrator the harness expects by default.
func DefaultOptions() Options {
	return Options{
		AdminEmail:    "admin@example.com",
		AdminPassword: "admin123",
		Logger:        logr.Discard(),
	}
}

// Server holds all state in memory, guarded by a single lock.
type Server struct {
	lock sync.Mutex

	log logr.Logger

	users      map[string]*user
	sessions   map[string]*user
	categories map[int64]*category
	products   map[int64]*product

	nextUserID     int64
	nextCategoryID int64
	nextProductID  int64
}

func New(options Options) *Server {
	s := &Server{
		log:        options.Logger,
		users:      map[string]*user{},
		sessions:   map[string]*user{},
		categories: map[int64]*category{},
		products:   map[int64]*product{},
	}

	if options.AdminEmail != "" {
		s.addUser(options.AdminEmail, options.AdminPassword, stringPtr("Administrator"), nil, RoleAdmin)
	}

	return s
}

// addUser must be called with the lock held.
func (s *Server) addUser(email, password string, name, phone *string, role string) *user {
	s.nextUserID++

	u := &user{
		id:       s.nextUserID,
		uuid:     uuid.NewString(),
		email:    email,
		password: password,
		name:     name,
		phone:    phone,
		role:     role,
	}

	s.users[strings.ToLower(email)] = u

	return u
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(s.logRequests)

	router.Post("/auth/register", s.register)
	router.Post("/auth/login", s.login)

	router.Get("/categories", s.listCategories)
	router.Get("/categories/{id}", s.getCategory)

	router.Get("/products", s.listProducts)
	router.Get("/products/{id}", s.getProduct)
	router.Get("/products/category/{id}", s.listProductsByCategory)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/profile", s.getProfile)
		r.Put("/profile", s.updateProfile)
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Use(requireAdmin)
		r.Post("/categories", s.createCategory)
		r.Put("/categories/{id}", s.updateCategory)
		r.Delete("/categories/{id}", s.deleteCategory)
		r.Post("/products", s.createProduct)
		r.Get("/products", s.listProducts)
		r.Put("/products/{id}", s.updateProduct)
		r.Delete("/products/{id}", s.deleteProduct)
	})

	return router
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.log.V(1).Info("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "duration", time.Since(start), "traceparent", r.Header.Get("Traceparent"))
	})
}

type contextKey int

const (
	userKey contextKey = iota
)

func userFromContext(ctx context.Context) *user {
	//nolint:forcetypeassert // only set by authenticate
	return ctx.Value(userKey).(*user)
}

// authenticate resolves the bearer token to a user.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "Missing authentication token")
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Empty token")
			return
		}

		s.lock.Lock()
		u, ok := s.sessions[token]
		s.lock.Unlock()

		if !ok {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
	})
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userFromContext(r.Context()).role != RoleAdmin {
			writeError(w, http.StatusForbidden, "Admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// decodeBody rejects anything that isn't a JSON document of the right shape.
func decodeBody(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}

	return true
}

// pathID parses the numeric {id} URL parameter.
func pathID(w http.ResponseWriter, r *http.Request, message string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, message)
		return 0, false
	}

	return id, true
}

func stringPtr(s string) *string {
	return &s
}
