package clientip

import (
	"net"
	"net/http"
	"strings"
)

// Header names consulted by the default extractor.
const (
	HeaderForwardedFor = "X-Forwarded-For"
	HeaderRealIP       = "X-Real-IP"
)

var defaultExtractor = NewExtractor()

// Extractor resolves the client address of a request by walking an ordered
// list of proxy headers and falling back to the connection address.
type Extractor struct {
	headers []string
}

// NewExtractor returns an Extractor that checks the given headers in order.
// With no headers it uses X-Forwarded-For followed by X-Real-IP.
func NewExtractor(headers ...string) *Extractor {
	if len(headers) == 0 {
		headers = []string{HeaderForwardedFor, HeaderRealIP}
	}
	clean := make([]string, 0, len(headers))
	for _, h := range headers {
		if h = strings.TrimSpace(h); h != "" {
			clean = append(clean, http.CanonicalHeaderKey(h))
		}
	}
	return &Extractor{headers: clean}
}

// Extract returns the first valid address found. Header values may be
// comma-separated chains; the leftmost valid entry wins. An empty string
// means no address could be determined.
func (e *Extractor) Extract(r *http.Request) string {
	if r == nil {
		return ""
	}

	for _, name := range e.headers {
		value := r.Header.Get(name)
		if value == "" {
			continue
		}
		for candidate := range strings.SplitSeq(value, ",") {
			if parsed := parseIP(candidate); parsed != "" {
				return parsed
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

// GetIP returns the client's IP address using the default header chain:
// X-Forwarded-For, then X-Real-IP, then RemoteAddr.
func GetIP(r *http.Request) string {
	return defaultExtractor.Extract(r)
}

// parseIP validates and normalizes an IP address string.
// Returns empty string if the IP is invalid.
func parseIP(ipStr string) string {
	ipStr = strings.TrimSpace(ipStr)
	if ipStr == "" {
		return ""
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return ""
	}

	return ip.String()
}
