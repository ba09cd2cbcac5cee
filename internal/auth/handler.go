package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"student-auth/internal/httputil"
	"student-auth/internal/password"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Messages returned to clients.
const (
	msgUsernameExists     = "Username already registered"
	msgEmailExists        = "Email already registered"
	msgInvalidCredentials = "Incorrect username or password"
	msgLoginSuccessful    = "Login successful"
)

type Handler struct {
	service   *Service
	logger    *slog.Logger
	validator *validator.Validate
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service:   service,
		logger:    logger,
		validator: validator.New(),
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/students/", h.Register)
	router.Post("/students", h.Register)
	router.Post("/login/", h.Login)
	router.Post("/login", h.Login)
}

// Register creates a new student account
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode request", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.WarnContext(ctx, "validation failed", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, httputil.ValidationMessage(err))
		return
	}

	created, err := h.service.Register(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameExists):
			httputil.RespondWithError(w, http.StatusBadRequest, msgUsernameExists)
		case errors.Is(err, ErrEmailExists):
			httputil.RespondWithError(w, http.StatusBadRequest, msgEmailExists)
		case errors.Is(err, password.ErrPasswordTooLong):
			httputil.RespondWithError(w, http.StatusBadRequest, "password must be at most 72 bytes")
		default:
			h.logger.ErrorContext(ctx, "registration failed", "error", err)
			httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.logger.InfoContext(ctx, "student registered", "id", created.ID, "username", created.Username)

	httputil.RespondWithJSON(w, http.StatusCreated, RegisterResponse{
		Username:     created.Username,
		Email:        created.Email,
		PasswordHash: created.HashedPassword,
	})
}

// Login checks credentials passed as query or form fields
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		h.logger.WarnContext(ctx, "failed to parse form", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request")
		return
	}

	_, hasUsername := r.Form["username"]
	_, hasPassword := r.Form["password"]
	if !hasUsername || !hasPassword {
		httputil.RespondWithError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	req := LoginRequest{
		Username: r.Form.Get("username"),
		Password: r.Form.Get("password"),
	}

	if _, err := h.service.Login(ctx, req); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.logger.InfoContext(ctx, "login rejected")
			httputil.RespondWithError(w, http.StatusUnauthorized, msgInvalidCredentials)
			return
		}
		h.logger.ErrorContext(ctx, "login failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.InfoContext(ctx, "student logged in", "username", req.Username)
	httputil.RespondWithJSON(w, http.StatusOK, LoginResponse{Message: msgLoginSuccessful})
}
