package proxy

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/baechuer/paradies-dashboard/internal/downstream"
	"github.com/baechuer/paradies-dashboard/internal/logger"
	"github.com/baechuer/paradies-dashboard/internal/session"
	"github.com/baechuer/paradies-dashboard/middleware"
	"github.com/go-chi/render"
)

// New creates a reverse proxy that rewrites paths and forwards the session
// credential as a bearer token.
// targetHost: "http://localhost:8000/api"
// stripPrefix: "/api"
// upstreamPrefix: appended before the remaining path, usually ""
//
// The target's own path is kept, so /api/user reaches targetHost + /user.
// Browser cookies never reach the upstream.
func New(targetHost, stripPrefix, upstreamPrefix string) (*httputil.ReverseProxy, error) {
	target, err := url.Parse(targetHost)
	if err != nil {
		return nil, err
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	originalDirector := proxy.Director

	proxy.Director = func(req *http.Request) {
		if strings.HasPrefix(req.URL.Path, stripPrefix) {
			req.URL.Path = upstreamPrefix + strings.TrimPrefix(req.URL.Path, stripPrefix)
			req.URL.RawPath = ""
		}
		originalDirector(req)
		req.Host = target.Host

		req.Header.Del("Cookie")
		if token := session.BearerFrom(req.Context()); token != "" {
			req.Header.Set("Authorization", downstream.AuthorizationHeader(token))
		} else {
			req.Header.Del("Authorization")
		}

		if reqID := middleware.GetRequestID(req.Context()); reqID != "" {
			req.Header.Set(middleware.HeaderXRequestID, reqID)
		}
	}

	proxy.ModifyResponse = func(resp *http.Response) error {
		// Upstream cookies are not ours to set on the dashboard origin.
		resp.Header.Del("Set-Cookie")
		return nil
	}

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		reqID := middleware.GetRequestID(r.Context())

		logger.Ctx(r.Context()).Error().
			Err(err).
			Str("target", targetHost).
			Msg("upstream_proxy_error")

		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, errorEnvelope{Error: errorBody{
			Code:      "upstream_unavailable",
			Message:   "upstream service unreachable",
			RequestID: reqID,
		}})
	}

	return proxy, nil
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}
