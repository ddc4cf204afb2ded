package libsql

import "strings"

const (
	pipelinePath = "/v2/pipeline"
	executePath  = "/v1/execute"
)

// normalizeURL translates libsql:// to https://, keeps http(s) URLs and
// assumes https for bare hosts.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return ""
	case strings.HasPrefix(raw, "libsql://"):
		return "https://" + strings.TrimPrefix(raw, "libsql://")
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		return raw
	default:
		return "https://" + raw
	}
}

// BaseURL returns the canonical base host for a configured endpoint URL, or
// "" when raw is empty.
func BaseURL(raw string) string {
	u := normalizeURL(raw)
	if u == "" {
		return ""
	}
	u = trimPathSuffix(u, executePath)
	u = trimPathSuffix(u, pipelinePath)
	return strings.TrimSuffix(u, "/")
}

// trimPathSuffix removes suffix (with or without its leading slash) from
// the end of u.
func trimPathSuffix(u, suffix string) string {
	if strings.HasSuffix(u, suffix) {
		return strings.TrimSuffix(u, suffix)
	}
	bare := strings.TrimPrefix(suffix, "/")
	if strings.HasSuffix(u, bare) {
		return strings.TrimSuffix(u, bare)
	}
	return u
}
