package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"homecash/internal/auth"
	"homecash/internal/transport/httpserver/handler"
	authmw "homecash/internal/transport/httpserver/middleware"
)

func NewRouter(handlers *handler.Handlers, tokens *auth.TokenManager, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS(allowedOrigins).Middleware)
	r.Use(authmw.NewHTTPMetrics().Middleware)

	r.Handle("/metrics", authmw.MetricsHandler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		r.Post("/auth/register", handlers.Register)
		r.Post("/auth/login", handlers.Login)

		jwtAuth := authmw.NewJWTAuth(tokens)
		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)

			r.Post("/houses", handlers.CreateHouse)
			r.Get("/houses", handlers.ListHouses)
			r.Post("/houses/join", handlers.JoinHouse)
			r.Get("/houses/{house_id}", handlers.GetHouse)
			r.Delete("/houses/{house_id}", handlers.DeleteHouse)
			r.Post("/houses/{house_id}/invite-code", handlers.RegenerateInviteCode)
			r.Get("/houses/{house_id}/members", handlers.ListHouseMembers)
			r.Post("/houses/{house_id}/members", handlers.AddHouseMember)
			r.Delete("/houses/{house_id}/members/{user_id}", handlers.RemoveHouseMember)

			r.Post("/houses/{house_id}/expenses", handlers.CreateExpense)
			r.Get("/houses/{house_id}/expenses", handlers.ListHouseExpenses)
			r.Get("/expenses/{expense_id}", handlers.GetExpense)
			r.Put("/expenses/{expense_id}", handlers.UpdateExpense)
			r.Delete("/expenses/{expense_id}", handlers.DeleteExpense)
			r.Post("/expenses/{expense_id}/split", handlers.SplitExpense)
			r.Get("/expenses/{expense_id}/participants", handlers.ListExpenseParticipants)
			r.Post("/expenses/{expense_id}/pay", handlers.PayExpense)

			r.Post("/credit-cards", handlers.CreateCreditCard)
			r.Get("/credit-cards", handlers.ListCreditCards)
			r.Get("/credit-cards/{card_id}", handlers.GetCreditCard)
			r.Put("/credit-cards/{card_id}", handlers.UpdateCreditCard)
			r.Delete("/credit-cards/{card_id}", handlers.DeleteCreditCard)

			r.Get("/credit-cards/{card_id}/invoices", handlers.ListCardInvoices)
			r.Post("/credit-cards/{card_id}/invoices", handlers.GenerateInvoice)
			r.Get("/invoices/{invoice_id}", handlers.GetInvoice)
			r.Post("/invoices/{invoice_id}/pay", handlers.PayInvoice)
		})
	})

	return r
}
