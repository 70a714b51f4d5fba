package connection

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Modes accepted by ResolveBaseURL.
const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

// DefaultDevPort is the API port used in development mode.
const DefaultDevPort = 8000

// ResolveBaseURL derives the API base URL from the location the client was
// started against.
//
// In development mode the API is on the same host at devPort. Otherwise the
// API shares the location's directory: everything from the last '/' of the
// path onward is dropped, along with query and fragment.
func ResolveBaseURL(mode, location string, devPort int) (string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", fmt.Errorf("empty server location")
	}
	if !strings.Contains(location, "://") {
		location = "http://" + location
	}

	u, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("parse server location: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("server location %q has no host", location)
	}

	if mode == ModeDevelopment {
		if devPort <= 0 {
			devPort = DefaultDevPort
		}
		host := net.JoinHostPort(u.Hostname(), strconv.Itoa(devPort))
		return u.Scheme + "://" + host, nil
	}

	dir := u.Path
	if i := strings.LastIndex(dir, "/"); i >= 0 {
		dir = dir[:i]
	}
	return u.Scheme + "://" + u.Host + dir, nil
}
