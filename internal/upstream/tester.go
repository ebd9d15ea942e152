package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/rmitchellscott/mediamaster/internal/database"
)

// TestStatus classifies the outcome of a connection test.
type TestStatus string

const (
	TestStatusOK          TestStatus = "ok"
	TestStatusAuthFailed  TestStatus = "invalid_credential"
	TestStatusRefused     TestStatus = "connection_refused"
	TestStatusTimeout     TestStatus = "timeout"
	TestStatusUnreachable TestStatus = "unreachable"
	TestStatusError       TestStatus = "error"
	TestStatusUnknownType TestStatus = "unknown_type"
)

// TestResult is the outcome of one connection test.
type TestResult struct {
	Status  TestStatus `json:"status"`
	Version string     `json:"version,omitempty"`
	Message string     `json:"message,omitempty"`
}

// OK reports whether the test succeeded.
func (r TestResult) OK() bool {
	return r.Status == TestStatusOK
}

// TestConnection issues one status/identity request against the candidate
// upstream and classifies the result. It never returns an error: failures
// are encoded in the result so callers can render them directly.
func TestConnection(ctx context.Context, instanceType, baseURL, apiKey string, timeout time.Duration) TestResult {
	var version string
	var err error

	switch instanceType {
	case database.InstanceTypeSonarr, database.InstanceTypeRadarr:
		client := newArrClient(baseURL, apiKey, timeout, "series")
		var status *SystemStatus
		status, err = client.Status(ctx)
		if status != nil {
			version = status.Version
		}
	case database.InstanceTypePlex:
		client := NewPlexClient(baseURL, apiKey, timeout)
		var identity *PlexIdentity
		identity, err = client.Identity(ctx)
		if identity != nil {
			version = identity.Version
		}
	default:
		return TestResult{
			Status:  TestStatusUnknownType,
			Message: fmt.Sprintf("unsupported instance type: %s", instanceType),
		}
	}

	if err == nil {
		return TestResult{Status: TestStatusOK, Version: version}
	}

	return classifyTestError(err)
}

func classifyTestError(err error) TestResult {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden {
			return TestResult{
				Status:  TestStatusAuthFailed,
				Message: fmt.Sprintf("upstream rejected the credential (status %d)", statusErr.StatusCode),
			}
		}
		return TestResult{
			Status:  TestStatusError,
			Message: fmt.Sprintf("upstream returned status %d", statusErr.StatusCode),
		}
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return TestResult{Status: TestStatusRefused, Message: "connection refused"}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return TestResult{Status: TestStatusTimeout, Message: "request timed out"}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return TestResult{Status: TestStatusTimeout, Message: "request timed out"}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return TestResult{Status: TestStatusUnreachable, Message: "host not found"}
	}

	return TestResult{Status: TestStatusError, Message: err.Error()}
}
