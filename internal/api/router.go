/**
 * @description
 * HTTP routing for the banking service. Public routes handle registration and
 * login; everything else requires a bearer token, and the admin group
 * additionally requires the admin flag loaded from the users table.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"github.com/abbasmsh1/Banker/internal/app"
)

// NewRouter assembles the chi router with middleware and all route groups.
// rdb may be nil, in which case idempotency replay is disabled.
func NewRouter(service *app.Service, rdb *redis.Client, allowedOrigins []string) http.Handler {
	h := NewHandlers(service)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Get("/", h.RootHandler)
	r.Post("/register", h.RegisterHandler)
	r.Post("/login", h.LoginHandler)

	// Authenticated user surface.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(service))

		r.Get("/accounts", h.ListAccountsHandler)
		r.Get("/beneficiaries", h.ListBeneficiariesHandler)
		r.Post("/beneficiaries", h.AddBeneficiaryHandler)
		r.Get("/transactions", h.ListTransactionsHandler)

		r.Group(func(r chi.Router) {
			r.Use(Idempotency(rdb))
			r.Post("/transfer", h.TransferHandler)
		})
	})

	// Admin surface.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(service))
		r.Use(AdminOnly)

		r.Post("/accounts", h.CreateAccountHandler)
		r.Post("/admin/create_user", h.CreateUserHandler)
		r.Post("/admin/create_user_account", h.CreateUserAccountHandler)
		r.Get("/admin/account/{id}", h.GetAccountHandler)
		r.Get("/admin/all_accounts", h.ListAllAccountsHandler)
		r.Post("/admin/add_money", h.AddMoneyHandler)
		r.Get("/admin/total_money", h.TotalMoneyHandler)
		r.Get("/admin/total_transferred_today", h.TotalTransferredTodayHandler)
	})

	return r
}
