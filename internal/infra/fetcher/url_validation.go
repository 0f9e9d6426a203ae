package fetcher

import (
	"fmt"
	"net"

	"intel-digest/internal/domain/entity"
)

// validateURL applies the feed link rules and, when denyPrivateIPs is set,
// rejects hosts resolving to loopback, private or link-local addresses.
// Redirect targets go through the same check.
func validateURL(rawURL string, denyPrivateIPs bool) error {
	u, err := entity.ParseLink(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if !denyPrivateIPs {
		return nil
	}
	return checkPublicHost(u.Hostname())
}

func checkPublicHost(host string) error {
	ips, err := net.LookupIP(host)
	if err != nil {
		return fmt.Errorf("%w: lookup %s: %v", ErrInvalidURL, host, err)
	}
	for _, ip := range ips {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
			return fmt.Errorf("%w: %s resolves to %s", ErrPrivateIP, host, ip)
		}
	}
	return nil
}
