package auth

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	usermodels "gatepass/internal/user/models"
	"gatepass/pkg/platform/httputil"
)

// Authenticator verifies credentials; the user service implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*usermodels.User, error)
}

// Handler serves the login endpoint. It is the only route mounted outside
// the auth middleware.
type Handler struct {
	users  Authenticator
	issuer *TokenIssuer
}

func NewHandler(users Authenticator, issuer *TokenIssuer) *Handler {
	return &Handler{users: users, issuer: issuer}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/login", h.login)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[loginRequest](w, r)
	if !ok {
		return
	}
	u, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	token, err := h.issuer.Issue(u.Username, string(u.Role))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, loginResponse{
		Token:    token,
		Username: u.Username,
		Role:     string(u.Role),
	})
}
