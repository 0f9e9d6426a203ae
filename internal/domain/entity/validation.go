package entity

import (
	"fmt"
	"net/url"
)

// MaxLinkLength bounds feed and article URLs.
const MaxLinkLength = 2048

// ParseLink parses rawURL as an absolute http(s) link with a host.
func ParseLink(rawURL string) (*url.URL, error) {
	invalid := func(msg string) error { return &ValidationError{Field: "url", Message: msg} }

	switch {
	case rawURL == "":
		return nil, invalid("URL is required")
	case len(rawURL) > MaxLinkLength:
		return nil, invalid(fmt.Sprintf("url must not exceed %d characters", MaxLinkLength))
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, invalid(fmt.Sprintf("parse URL: %v", err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, invalid(fmt.Sprintf("scheme %q not allowed (only http/https)", u.Scheme))
	}
	if u.Hostname() == "" {
		return nil, invalid("URL must have a valid host")
	}
	return u, nil
}

// ValidateURL reports why rawURL cannot be used as a link, or nil.
func ValidateURL(rawURL string) error {
	_, err := ParseLink(rawURL)
	return err
}

// IsValidLink reports whether rawURL is usable as an article link.
// The relinker only ever hands out links that pass this check.
func IsValidLink(rawURL string) bool {
	return ValidateURL(rawURL) == nil
}
