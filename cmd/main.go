// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/volunteerhub/volunteer-signup/internal/auth"
	"github.com/volunteerhub/volunteer-signup/internal/config"
	"github.com/volunteerhub/volunteer-signup/internal/database"
	"github.com/volunteerhub/volunteer-signup/internal/handler"
	"github.com/volunteerhub/volunteer-signup/internal/repository"
	"github.com/volunteerhub/volunteer-signup/internal/scheduler"
	"github.com/volunteerhub/volunteer-signup/internal/service"
	"github.com/volunteerhub/volunteer-signup/internal/watch"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ── 1. Connect to PostgreSQL and apply migrations ─────────────────────
	if err := database.Migrate(cfg.DB); err != nil {
		log.Fatalf("migrations: %v", err)
	}
	pool, err := database.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()
	log.Println("✓ Connected to PostgreSQL")

	// ── 2. Wire up layers ────────────────────────────────────────────────
	eventRepo := repository.NewEventRepository(pool)
	signupRepo := repository.NewSignupRepository(pool)
	inquiryRepo := repository.NewInquiryRepository(pool)
	teamRepo := repository.NewTeamRepository(pool)

	hub := watch.NewHub()
	catalogSvc := service.NewCatalogService(eventRepo, hub)
	admissionSvc := service.NewAdmissionService(eventRepo, signupRepo, hub)
	inquirySvc := service.NewInquiryService(inquiryRepo, hub)
	rosterSvc := service.NewRosterService(teamRepo, signupRepo, hub)

	hub.RegisterLoader(watch.TopicEvents, func(ctx context.Context) (any, error) {
		return catalogSvc.List(ctx)
	})
	hub.RegisterLoader(watch.TopicSignups, func(ctx context.Context) (any, error) {
		return admissionSvc.Occupancy(ctx)
	})
	hub.RegisterLoader(watch.TopicInquiries, func(ctx context.Context) (any, error) {
		return inquirySvc.List(ctx)
	})
	hub.RegisterLoader(watch.TopicTeams, func(ctx context.Context) (any, error) {
		return rosterSvc.ListTeams(ctx)
	})

	authSvc := auth.NewService(cfg.Auth)
	h := handler.New(catalogSvc, admissionSvc, inquirySvc, rosterSvc, authSvc)

	// ── 3. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Logger)          // structured access log
	r.Use(handler.CORS(cfg.CORSAllow))

	// Health
	r.Get("/health", handler.HealthCheck)

	// Auth
	r.Post("/auth/signin", h.SignIn)
	r.Post("/auth/signout", h.SignOut)

	// Public API
	r.Get("/events", h.ListEvents)
	r.Get("/events/{id}", h.GetEvent)
	r.Post("/events/{id}/signups", h.SubmitSignup)
	r.Get("/events/{id}/signups", h.ListEventSignups)
	r.Get("/signups", h.MySignups)
	r.Get("/occupancy", h.Occupancy)
	r.Post("/inquiries", h.SubmitInquiry)
	r.Get("/inquiries", h.ListInquiries)
	r.Get("/teams", h.ListTeams)
	r.Get("/teams/{id}", h.GetTeam)

	// Live snapshot streams
	r.Get("/live/events", handler.Live(hub, watch.TopicEvents))
	r.Get("/live/signups", handler.Live(hub, watch.TopicSignups))
	r.Get("/live/inquiries", handler.Live(hub, watch.TopicInquiries))
	r.Get("/live/teams", handler.Live(hub, watch.TopicTeams))

	// Administrator API
	r.Group(func(r chi.Router) {
		r.Use(authSvc.RequireAdmin)
		r.Post("/events", h.CreateEvent)
		r.Put("/events/{id}", h.UpdateEvent)
		r.Delete("/events/{id}", h.DeleteEvent)
		r.Delete("/signups/{id}", h.RemoveSignup)
		r.Post("/inquiries/{id}/answer", h.AnswerInquiry)
		r.Post("/teams", h.CreateTeam)
		r.Post("/teams/{id}/members", h.AddTeamMember)
		r.Delete("/teams/{id}/members/{memberID}", h.RemoveTeamMember)
		r.Post("/teams/{id}/members/{memberID}/move", h.MoveTeamMember)
		r.Put("/teams/{id}/area", h.UpdateTeamArea)
		r.Delete("/teams/{id}", h.DeleteTeam)
		r.Get("/teams/candidates", h.ListTeamCandidates)
	})

	// ── 4. Background occupancy auditor ───────────────────────────────────
	auditor := scheduler.New(admissionSvc, cfg.Audit.Interval)
	go auditor.Start(ctx)

	// ── 5. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTP.Port),
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("✓ Server listening on http://localhost:%s", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Println("shutting down server…")
	case err := <-errCh:
		log.Fatalf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
	log.Println("server stopped")
}
