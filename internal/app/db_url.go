package app

import (
	"net/url"
	"path/filepath"
	"strings"
)

// dbNameFromURL extracts a loggable database name without credentials. It
// understands postgres URLs, key=value DSNs and sqlite paths.
func dbNameFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err == nil && parsed != nil && parsed.Scheme != "" && parsed.Scheme != "file" {
		name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
		if name != "" {
			return name
		}
	}

	for _, token := range strings.Fields(trimmed) {
		if !strings.HasPrefix(token, "dbname=") {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(token, "dbname="))
		name = strings.Trim(name, `"'`)
		if name != "" {
			return name
		}
	}

	if strings.Contains(trimmed, "=") && !strings.HasPrefix(trimmed, "file:") {
		return ""
	}
	path := strings.TrimPrefix(trimmed, "file:")
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}
