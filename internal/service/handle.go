package service

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var handleRe = regexp.MustCompile(`^[A-Za-z0-9_-]{3,20}$`)

// ParseHandle acepta "name", "u/name", "/user/name" o la URL del perfil en reddit.
func ParseHandle(input string) (string, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidHandle)
	}

	candidate := raw
	if strings.Contains(strings.ToLower(raw), "reddit.com") {
		name, ok := handleFromURL(raw)
		if !ok {
			return "", fmt.Errorf("%w: %q is not a profile url", ErrInvalidHandle, raw)
		}
		candidate = name
	} else {
		candidate = strings.Trim(candidate, "/")
		lower := strings.ToLower(candidate)
		switch {
		case strings.HasPrefix(lower, "u/"):
			candidate = candidate[len("u/"):]
		case strings.HasPrefix(lower, "user/"):
			candidate = candidate[len("user/"):]
		}
	}

	if !handleRe.MatchString(candidate) {
		return "", fmt.Errorf("%w: %q", ErrInvalidHandle, input)
	}
	return candidate, nil
}

func handleFromURL(raw string) (string, bool) {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if host != "reddit.com" && !strings.HasSuffix(host, ".reddit.com") {
		return "", false
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 {
		return "", false
	}
	switch strings.ToLower(segments[0]) {
	case "u", "user":
		return segments[1], segments[1] != ""
	}
	return "", false
}
