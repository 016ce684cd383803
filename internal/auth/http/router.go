package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/AlibekovAA/jokes-gateway/internal/auth/service"
	commonhttp "github.com/AlibekovAA/jokes-gateway/internal/common/http"
	"github.com/AlibekovAA/jokes-gateway/internal/common/logger"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type Config struct {
	RequestTimeout time.Duration
}

type Handler struct {
	auth         *service.AuthService
	log          *logger.Logger
	errorHandler *commonhttp.ErrorHandler
}

func NewHandler(auth *service.AuthService, cfg Config, log *logger.Logger) http.Handler {
	h := &Handler{
		auth:         auth,
		log:          log,
		errorHandler: commonhttp.NewErrorHandler(log),
	}

	withTimeout := commonhttp.WithTimeout(cfg.RequestTimeout)
	post := commonhttp.RequireMethod(http.MethodPost)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/register", post(withTimeout(h.register)))
	mux.HandleFunc("/api/auth/login", post(withTimeout(h.login)))
	return mux
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, action string) (credentialsRequest, bool) {
	var req credentialsRequest
	// An empty body decodes to empty credentials and fails validation.
	err := commonhttp.DecodeJSON(r, &req)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.log.WithFields(r.Context(), logger.Fields{
			"action": action + "_body_too_large",
			"limit":  tooLarge.Limit,
		}).Warnf("%s failed: request body too large", action)
		commonhttp.WriteErrorEnvelope(w, http.StatusRequestEntityTooLarge, commonhttp.CodeBodyTooLarge, "request body too large", nil, commonhttp.TraceIDFromContext(r.Context()))
		return credentialsRequest{}, false
	}
	if err != nil && !errors.Is(err, io.EOF) {
		h.log.WithFields(r.Context(), logger.Fields{
			"action": action + "_invalid_json",
		}).Warnf("%s failed: invalid json: %v", action, err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, commonhttp.TraceIDFromContext(r.Context()))
		return credentialsRequest{}, false
	}
	return req, true
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r, "register")
	if !ok {
		return
	}

	user, err := h.auth.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, registerResponse{
		ID:       int64(user.ID),
		Username: user.Username,
		Password: user.PasswordHash,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r, "login")
	if !ok {
		return
	}

	result, err := h.auth.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, loginResponse{
		Message: result.Message,
		Token:   result.Token,
	})
}
