package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/GrantAgent/internal/adapter/utils"
	"github.com/akolanti/GrantAgent/internal/config"
	"github.com/akolanti/GrantAgent/internal/metrics"
	"github.com/akolanti/GrantAgent/pkg/logger_i"
	"golang.org/x/time/rate"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

// Chain runs trace injection, authentication and rate limiting before a handler
// and records the response status afterwards.
type Chain struct {
	authToken string
	limiter   *IPRateLimiter
	logger    *logger_i.Logger
}

// NewChain guards requests with authToken. An empty token disables authentication.
func NewChain(authToken string) *Chain {
	return &Chain{
		authToken: authToken,
		limiter:   NewIPRateLimiter(rate.Limit(config.RATE_LIMIT_PER_SECOND), config.BURST_RATE_LIMIT_PER_SECOND),
		logger:    logger_i.NewLogger("middleware"),
	}
}

// Handler adapts the chain to chi's Use.
func (c *Chain) Handler(next http.Handler) http.Handler {
	return c.Wrap(next.ServeHTTP)
}

func (c *Chain) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		re := c.processRequest(requestResponseStruct{req: r, writer: rec})

		if !re.badRequest.isBadRequest {
			next(rec, re.req)
		}

		metrics.HttpRequestsTotal.WithLabelValues(utils.RoutePattern(re.req), strconv.Itoa(rec.Status)).Inc()
	}
}

func (c *Chain) processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = c.logger
	re = injectTrace(re)
	re.logger.Debug("New request received", "method", re.req.Method, "path", re.req.URL.Path)

	for _, step := range []func(requestResponseStruct) requestResponseStruct{c.authenticate, c.rateLimit} {
		re = step(re)
		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return re
		}
	}
	return re
}
