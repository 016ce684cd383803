package http

import (
	"net/http"

	"github.com/AlibekovAA/jokes-gateway/internal/common/constants"
	"github.com/AlibekovAA/jokes-gateway/internal/common/httpmetrics"
	"github.com/AlibekovAA/jokes-gateway/internal/common/logger"
)

func BuildBaseHandler(log *logger.Logger, handler http.Handler) http.Handler {
	metrics := httpmetrics.New()
	recovery := RecoveryMiddleware(log)
	traceID := TraceIDMiddleware
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)
	securityHeaders := SecurityHeadersMiddleware
	csp := ContentSecurityPolicyMiddleware("")

	return securityHeaders(csp(traceID(recovery(maxRequestSize(metrics.Wrap(handler))))))
}
