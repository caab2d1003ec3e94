package domain

import (
	"path"
	"strings"
)

// CustomerIDFromFilename extracts the customer id from an upload named
// like naloga-lokacija-<id>.csv.
func CustomerIDFromFilename(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	base := path.Base(strings.TrimSpace(name))

	parts := strings.Split(base, "-")
	if len(parts) < 3 {
		return "", ErrInvalidFilename
	}

	id := parts[len(parts)-1]
	if len(id) >= 4 && strings.EqualFold(id[len(id)-4:], ".csv") {
		id = id[:len(id)-4]
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrInvalidFilename
	}
	return id, nil
}
