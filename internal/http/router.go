// Package http assembles the API surface: public login and health endpoints,
// and the authenticated API behind the bearer-token middleware.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gatepass/internal/audit"
	"gatepass/internal/auth"
	driverhandler "gatepass/internal/driver/handler"
	gatehandler "gatepass/internal/gate/handler"
	ledgerhandler "gatepass/internal/ledger/handler"
	"gatepass/internal/platform/middleware"
	transactionhandler "gatepass/internal/transaction/handler"
	userhandler "gatepass/internal/user/handler"
	vehiclehandler "gatepass/internal/vehicle/handler"
	"gatepass/pkg/platform/httputil"
)

// Health reports readiness of a backing dependency.
type Health interface {
	Name() string
	Healthy(ctx context.Context) error
}

// Deps collects everything the router mounts.
type Deps struct {
	Logger *slog.Logger

	Auth         *auth.Handler
	AuthMW       func(http.Handler) http.Handler
	Vehicles     *vehiclehandler.Handler
	Drivers      *driverhandler.Handler
	Gates        *gatehandler.Handler
	Users        *userhandler.Handler
	Ledger       *ledgerhandler.Handler
	Transactions *transactionhandler.Handler
	Audit        *audit.Handler

	HealthChecks []Health
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	if deps.Logger != nil {
		r.Use(middleware.Logging(deps.Logger))
	}

	r.Get("/healthz", healthHandler(deps.HealthChecks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	deps.Auth.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(deps.AuthMW)
		deps.Vehicles.Register(r)
		deps.Drivers.Register(r)
		deps.Gates.Register(r)
		deps.Users.Register(r)
		deps.Ledger.Register(r)
		deps.Transactions.Register(r)
		deps.Audit.Register(r)
	})

	return r
}

func healthHandler(checks []Health) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := make(map[string]string, len(checks)+1)
		body["status"] = "ok"
		for _, c := range checks {
			if err := c.Healthy(r.Context()); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[c.Name()] = err.Error()
				continue
			}
			body[c.Name()] = "ok"
		}
		httputil.WriteJSON(w, status, body)
	}
}
