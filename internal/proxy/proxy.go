// Package proxy forwards dashboard API calls to the upstream servers with
// the stored credential injected. The proxy is a pure relay: upstream
// status codes and bodies pass through untouched, and only transport
// failures produce a response of their own.
package proxy

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmitchellscott/mediamaster/internal/config"
	"github.com/rmitchellscott/mediamaster/internal/database"
	"github.com/rmitchellscott/mediamaster/internal/logging"
	"github.com/rmitchellscott/mediamaster/internal/metrics"
	"github.com/rmitchellscott/mediamaster/internal/upstream"
)

// hopHeaders are stripped from relayed responses per RFC 7230 section 6.1.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Proxy relays requests to a stored instance's upstream API.
type Proxy struct {
	instances *database.InstanceService
	client    *http.Client
}

// New creates a proxy. The upstream timeout comes from UPSTREAM_TIMEOUT.
func New(db *gorm.DB) *Proxy {
	return &Proxy{
		instances: database.NewInstanceService(db),
		client: &http.Client{
			Timeout: config.GetDuration("UPSTREAM_TIMEOUT", upstream.DefaultTimeout),
			// Redirects from the upstream are relayed as-is.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Handler returns the gin handler for /api/{type}/:id/*path routes. The
// instanceType fixes which kind of instance the route accepts.
func (p *Proxy) Handler(instanceType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			metrics.ProxyErrors.WithLabelValues(instanceType, "bad_id").Inc()
			c.JSON(http.StatusNotFound, gin.H{"error": "instance not found"})
			return
		}

		inst, err := p.instances.GetInstanceByID(id)
		if err != nil || inst.Type != instanceType {
			metrics.ProxyErrors.WithLabelValues(instanceType, "unknown_instance").Inc()
			c.JSON(http.StatusNotFound, gin.H{"error": "instance not found"})
			return
		}
		if !inst.Enabled {
			metrics.ProxyErrors.WithLabelValues(instanceType, "disabled").Inc()
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "instance is disabled"})
			return
		}

		p.relay(c, inst)
	}
}

// relay forwards the request and streams the upstream response back.
func (p *Proxy) relay(c *gin.Context, inst *database.Instance) {
	target, err := buildTargetURL(inst.URL, c.Param("path"), c.Request.URL.RawQuery)
	if err != nil {
		metrics.ProxyErrors.WithLabelValues(inst.Type, "bad_path").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proxy path"})
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, target, c.Request.Body)
	if err != nil {
		metrics.ProxyErrors.WithLabelValues(inst.Type, "bad_request").Inc()
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to build upstream request"})
		return
	}

	if contentType := c.GetHeader("Content-Type"); contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.ContentLength = c.Request.ContentLength

	// Credential injection is the whole point: the browser never holds
	// the upstream API key.
	switch inst.Type {
	case database.InstanceTypePlex:
		req.Header.Set(upstream.HeaderPlexToken, inst.APIKey)
		req.Header.Set("Accept", "application/json")
	default:
		req.Header.Set(upstream.HeaderArrAPIKey, inst.APIKey)
		if accept := c.GetHeader("Accept"); accept != "" {
			req.Header.Set("Accept", accept)
		}
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		reason := "transport"
		if errors.Is(err, context.Canceled) {
			reason = "canceled"
		}
		metrics.ProxyErrors.WithLabelValues(inst.Type, reason).Inc()
		logging.WarnWithComponent(logging.ComponentProxy, "Upstream request failed",
			"instance", inst.Name, "method", c.Request.Method, "path", c.Param("path"), "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream request failed"})
		return
	}
	defer resp.Body.Close()

	metrics.ProxyRequests.WithLabelValues(inst.Type, strconv.Itoa(resp.StatusCode)).Inc()
	logging.DebugWithComponent(logging.ComponentProxy, "Relayed request",
		"instance", inst.Name, "method", c.Request.Method, "path", c.Param("path"),
		"status", resp.StatusCode, "duration", time.Since(start))

	header := c.Writer.Header()
	for key, values := range resp.Header {
		for _, value := range values {
			header.Add(key, value)
		}
	}
	for _, key := range hopHeaders {
		header.Del(key)
	}

	c.Status(resp.StatusCode)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		logging.DebugWithComponent(logging.ComponentProxy, "Response copy interrupted",
			"instance", inst.Name, "error", err)
	}
}

// buildTargetURL joins the instance base URL with the relayed path and
// query. The path is taken verbatim from the wildcard route segment.
func buildTargetURL(baseURL, path, rawQuery string) (string, error) {
	target, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	rel, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	target = target.JoinPath(rel.Path)
	target.RawQuery = rawQuery
	return target.String(), nil
}
