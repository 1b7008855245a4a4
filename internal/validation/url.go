package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// LinkValidator checks article and front-page links before they are handed
// to an external program or the clipboard.
type LinkValidator struct {
	// AllowLocalhost permits loopback hosts
	AllowLocalhost bool
	// AllowPrivateIPs permits literal private addresses
	AllowPrivateIPs bool
	// MaxLength is the maximum allowed URL length
	MaxLength int
}

// NewLinkValidator creates a validator that only accepts public http(s) links.
func NewLinkValidator() *LinkValidator {
	return &LinkValidator{
		MaxLength: 4096,
	}
}

// NewPermissiveLinkValidator accepts local and private hosts, for tests and
// self-hosted API mirrors.
func NewPermissiveLinkValidator() *LinkValidator {
	return &LinkValidator{
		AllowLocalhost:  true,
		AllowPrivateIPs: true,
		MaxLength:       4096,
	}
}

// Validate returns the normalized form of input or an error describing why
// it cannot be opened. Links without a scheme are rejected rather than
// guessed at, API responses always carry one.
func (v *LinkValidator) Validate(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}
	if v.MaxLength > 0 && len(input) > v.MaxLength {
		return "", fmt.Errorf("URL too long (max %d characters)", v.MaxLength)
	}
	if strings.ContainsAny(input, "<>\"`") || strings.ContainsAny(input, "\x00\r\n") {
		return "", fmt.Errorf("URL contains invalid characters")
	}

	parsed, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	case "":
		return "", fmt.Errorf("URL must include http or https scheme")
	default:
		return "", fmt.Errorf("URL must use http or https protocol")
	}

	if parsed.Hostname() == "" {
		return "", fmt.Errorf("URL must have a valid hostname")
	}
	if err := v.validateHost(parsed.Hostname()); err != nil {
		return "", err
	}

	return parsed.String(), nil
}

// IsValid reports whether input passes Validate.
func (v *LinkValidator) IsValid(input string) bool {
	_, err := v.Validate(input)
	return err == nil
}

func (v *LinkValidator) validateHost(hostname string) error {
	if !v.AllowLocalhost && isLocalhost(hostname) {
		return fmt.Errorf("localhost URLs are not permitted")
	}
	if !v.AllowPrivateIPs {
		if ip := net.ParseIP(hostname); ip != nil && isPrivateIP(ip) {
			return fmt.Errorf("private IP addresses are not permitted")
		}
	}
	return nil
}

func isLocalhost(hostname string) bool {
	hostname = strings.ToLower(hostname)
	return hostname == "localhost" ||
		hostname == "127.0.0.1" ||
		hostname == "::1" ||
		strings.HasSuffix(hostname, ".localhost")
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsPrivate() ||
		ip.IsLoopback() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified()
}
