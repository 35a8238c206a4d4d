package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/boatmemories/backend/internal/models"
	"github.com/boatmemories/backend/internal/pricing"
	"github.com/boatmemories/backend/internal/repository"
	"github.com/boatmemories/backend/internal/service"
)

type Server struct {
	addr          string
	log           *slog.Logger
	identities    *service.IdentityService
	memories      *service.MemoryService
	maxPhotoBytes int64
	maxPhotos     int
	router        *chi.Mux
}

func NewServer(addr string, log *slog.Logger, identities *service.IdentityService, memories *service.MemoryService, maxPhotoBytes int64, maxPhotos int) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	s := &Server{
		addr:          addr,
		log:           log,
		identities:    identities,
		memories:      memories,
		maxPhotoBytes: maxPhotoBytes,
		maxPhotos:     maxPhotos,
		router:        r,
	}

	r.Post("/auth/anonymous", s.handleCreateAnonymous)
	r.Get("/meta/locations", s.handleListLocations)
	r.Get("/meta/pricing", s.handleListPricing)
	r.Group(func(protected chi.Router) {
		protected.Use(s.authMiddleware())
		protected.Post("/auth/upgrade", s.handleUpgradeIdentity)
		protected.Route("/memories", func(r chi.Router) {
			r.Post("/", s.handleCreateMemory)
			r.Get("/", s.handleListMemories)
			r.Get("/{id}", s.handleGetMemory)
			r.Post("/{id}/purchase", s.handleCompletePurchase)
			r.Get("/{id}/download", s.handleDownloadAsset)
		})
	})
	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // artwork generation runs inside the create request
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error("api shutdown error", "err", err)
		}
	}()

	s.log.Info("api listening", "addr", s.addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api listen: %w", err)
	}
	return nil
}

type contextKey string

const identityKey contextKey = "identity"

func (s *Server) authMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			identity, err := s.identities.Resolve(r.Context(), token)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requester(r *http.Request) *models.Identity {
	identity, _ := r.Context().Value(identityKey).(*models.Identity)
	return identity
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

type identityResponse struct {
	Identity identityView `json:"identity"`
	Token    string       `json:"token"`
}

type identityView struct {
	ID        string `json:"id"`
	Email     string `json:"email,omitempty"`
	Anonymous bool   `json:"anonymous"`
}

func (s *Server) handleCreateAnonymous(w http.ResponseWriter, r *http.Request) {
	identity, token, err := s.identities.CreateAnonymous(r.Context())
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, identityResponse{
		Identity: identityView{ID: identity.ID, Anonymous: identity.Anonymous},
		Token:    token,
	})
}

type upgradeRequest struct {
	Email      string `json:"email"`
	MergeToken string `json:"merge_token"`
}

func (s *Server) handleUpgradeIdentity(w http.ResponseWriter, r *http.Request) {
	var req upgradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	identity, token, err := s.identities.Upgrade(r.Context(), requester(r).ID, req.Email, req.MergeToken)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, identityResponse{
		Identity: identityView{ID: identity.ID, Email: identity.Email, Anonymous: identity.Anonymous},
		Token:    token,
	})
}

func (s *Server) handleListLocations(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"locations": pricing.Locations()})
}

func (s *Server) handleListPricing(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"options": pricing.Options()})
}

func (s *Server) handleCreateMemory(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, int64(s.maxPhotos+1)*s.maxPhotoBytes)
	if err := r.ParseMultipartForm(s.maxPhotoBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	location := r.FormValue("location")
	files := r.MultipartForm.File["photos"]

	var photos []service.PhotoUpload
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			http.Error(w, "read photo", http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(io.LimitReader(file, s.maxPhotoBytes+1))
		file.Close()
		if err != nil {
			http.Error(w, "read photo", http.StatusBadRequest)
			return
		}
		photos = append(photos, service.PhotoUpload{
			Data:        data,
			ContentType: header.Header.Get("Content-Type"),
		})
	}

	memory, err := s.memories.CreateMemory(r.Context(), requester(r).ID, location, photos)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, memoryView(memory))
}

func (s *Server) handleListMemories(w http.ResponseWriter, r *http.Request) {
	memories, err := s.memories.ListMemories(r.Context(), requester(r).ID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	views := make([]map[string]any, 0, len(memories))
	for i := range memories {
		views = append(views, memoryView(&memories[i]))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"memories": views})
}

func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request) {
	memory, err := s.memories.GetMemory(r.Context(), requester(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, memoryView(memory))
}

type purchaseRequest struct {
	Tier        string `json:"tier"`
	Email       string `json:"email"`
	MethodToken string `json:"method_token"`
}

func (s *Server) handleCompletePurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	memory, err := s.memories.CompletePurchase(r.Context(), requester(r).ID, chi.URLParam(r, "id"),
		models.Tier(req.Tier), req.Email, req.MethodToken)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, memoryView(memory))
}

func (s *Server) handleDownloadAsset(w http.ResponseWriter, r *http.Request) {
	url, err := s.memories.DownloadAsset(r.Context(), requester(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// memoryView is the API shape of a memory. The clean source asset never
// leaves the server, and the final URL appears only once the memory is paid.
func memoryView(m *models.Memory) map[string]any {
	view := map[string]any{
		"id":              m.ID,
		"location":        m.Location,
		"photos":          m.PhotoURLs,
		"preview_url":     m.PreviewURL,
		"watermarked_url": m.WatermarkedURL,
		"payment_status":  m.PaymentStatus,
		"payment_amount":  m.PaymentAmount,
		"created_at":      m.CreatedAt,
	}
	if m.Tier != "" {
		view["tier"] = m.Tier
	}
	if m.PaymentStatus == models.PaymentPaid {
		view["final_url"] = m.FinalURL
	}
	return view
}

func (s *Server) serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, "memory not found", http.StatusNotFound)
	case errors.Is(err, service.ErrNotPurchased):
		http.Error(w, "purchase required", http.StatusPaymentRequired)
	case errors.Is(err, repository.ErrAlreadyPurchased):
		http.Error(w, "already purchased", http.StatusConflict)
	case errors.Is(err, service.ErrUpload), errors.Is(err, service.ErrGeneration), errors.Is(err, service.ErrPayment):
		s.log.Error("collaborator failure", "err", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
	case errors.Is(err, repository.ErrConflict), errors.Is(err, repository.ErrInvalidTransition):
		// State-machine violations point at a bug or a race, not at the
		// user; log them distinctly.
		s.log.Error("state machine violation", "err", err)
		http.Error(w, "please try again", http.StatusInternalServerError)
	default:
		s.log.Error("handler error", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
