package http

import (
	"net/http"

	commonhttp "github.com/AlibekovAA/jokes-gateway/internal/common/http"
	"github.com/AlibekovAA/jokes-gateway/internal/common/jwtverify"
	"github.com/AlibekovAA/jokes-gateway/internal/common/logger"
	"github.com/AlibekovAA/jokes-gateway/internal/jokes"
)

type Handler struct {
	provider *jokes.Provider
	log      *logger.Logger
}

// NewHandler serves GET /api/jokes behind the token gate.
func NewHandler(provider *jokes.Provider, verifier *jwtverify.Verifier, log *logger.Logger) http.Handler {
	h := &Handler{provider: provider, log: log}
	gate := jwtverify.Middleware(verifier, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/jokes", commonhttp.RequireMethod(http.MethodGet)(gate(http.HandlerFunc(h.list)).ServeHTTP))
	return mux
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	if claims, ok := jwtverify.FromContext(r.Context()); ok && h.log.ShouldLog(logger.DEBUG) {
		h.log.WithFields(r.Context(), logger.Fields{
			"user_id": claims.UserID,
			"action":  "jokes_list",
		}).Debug("jokes requested")
	}

	commonhttp.WriteJSON(w, http.StatusOK, h.provider.List())
}
