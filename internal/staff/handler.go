package staff

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
)

const MaxBodyBytes = 1 << 20

// Handler exposes staff authentication: code login, session resume, logout.
type Handler struct {
	logger apt.Logger
	config *apt.Config
	tlm    *telemetry.HTTP
	auth   *Authenticator
}

func NewHandler(auth *Authenticator, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Handler{
		logger: logger,
		config: config,
		tlm:    telemetry.NewHTTP(),
		auth:   auth,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/staff/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Get("/session", h.ResumeSession)
		r.Post("/logout", h.Logout)
	})
}

type LoginRequest struct {
	Code string `json:"code"`
}

type LoginResponse struct {
	Token          string `json:"token"`
	Role           string `json:"role"`
	RestaurantID   string `json:"restaurant_id"`
	RestaurantName string `json:"restaurant_name"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Login")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	var req LoginRequest
	if !h.decodeBody(w, r, &req, log) {
		return
	}

	sess, rest, err := h.auth.Login(ctx, req.Code)
	if errors.Is(err, ErrCodeRequired) {
		apt.RespondError(w, http.StatusBadRequest, "Access code is required")
		return
	}
	if errors.Is(err, ErrInvalidCode) {
		apt.RespondError(w, http.StatusUnauthorized, "Unknown access code")
		return
	}
	if err != nil {
		log.Error("login failed", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not sign in")
		return
	}

	log.Info("staff signed in", "restaurant_id", rest.ID, "role", sess.Role)

	apt.RespondSuccess(w, &LoginResponse{
		Token:          sess.Token,
		Role:           sess.Role,
		RestaurantID:   rest.ID,
		RestaurantName: rest.Name,
	})
}

func (h *Handler) ResumeSession(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ResumeSession")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	sess, err := h.auth.Resume(ctx, bearerToken(r))
	if errors.Is(err, ErrInvalidSession) {
		apt.RespondError(w, http.StatusUnauthorized, "Session expired")
		return
	}
	if err != nil {
		log.Error("session resume failed", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not resume session")
		return
	}

	apt.RespondSuccess(w, sess)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Logout")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	if err := h.auth.Logout(ctx, bearerToken(r)); err != nil {
		log.Error("logout failed", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not sign out")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, target interface{}, log apt.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("failed to read request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Failed to read request body")
		return false
	}

	if err := json.Unmarshal(body, target); err != nil {
		log.Debug("failed to decode request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return false
	}

	return true
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", r.Context().Value("request_id"))
}
