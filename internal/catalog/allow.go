package catalog

import (
	"fmt"
	"net/url"
	"strings"
)

// CheckRemoteSource vets a source supplied by an API client. Only http(s)
// and s3 locations are accepted, and only when they equal an allowed entry
// or sit under an allowed entry ending in "/". Local paths never pass.
func CheckRemoteSource(source string, allowed []string) error {
	u, err := url.Parse(source)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrNotAllowed, source, err)
	}
	switch u.Scheme {
	case "http", "https", "s3":
	default:
		return fmt.Errorf("%w: %q: only http(s) and s3 sources can be imported remotely", ErrNotAllowed, source)
	}
	if u.User != nil || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrNotAllowed, source)
	}
	for _, seg := range strings.Split(u.Path, "/") {
		if seg == ".." {
			return fmt.Errorf("%w: %q: relative path segments", ErrNotAllowed, source)
		}
	}

	for _, entry := range allowed {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if source == entry || (strings.HasSuffix(entry, "/") && strings.HasPrefix(source, entry)) {
			return nil
		}
	}
	return fmt.Errorf("%w: %q is not in the allowed catalog sources", ErrNotAllowed, source)
}
