package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeBaseURL validates an upstream base URL and returns it in canonical
// form: scheme and host required, http/https only, no query or fragment,
// trailing slashes stripped.
func NormalizeBaseURL(urlStr string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(urlStr))
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme: %q (only http and https are allowed)", parsed.Scheme)
	}

	if parsed.Hostname() == "" {
		return "", fmt.Errorf("URL missing hostname")
	}

	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return "", fmt.Errorf("base URL must not contain a query string or fragment")
	}

	parsed.Path = strings.TrimRight(parsed.Path, "/")
	return parsed.String(), nil
}

// ValidateBaseURL validates an upstream base URL without normalizing it.
func ValidateBaseURL(urlStr string) error {
	_, err := NormalizeBaseURL(urlStr)
	return err
}
