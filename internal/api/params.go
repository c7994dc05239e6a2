package api

import (
	"fmt"
	"net/http"
	"strconv"

	"shareit/internal/models"
)

// callerID reads the caller identity header. The header must be present and
// a positive integer; identity validation beyond that is the services' job.
func callerID(r *http.Request) (int64, error) {
	raw := r.Header.Get(callerHeader)
	if raw == "" {
		return 0, fmt.Errorf("%s header is required", callerHeader)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s header must be a positive integer", callerHeader)
	}
	return id, nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return id, nil
}

// pageParams reads from/size with their defaults. Range validation stays in
// the services so that direct callers get the same errors.
func (s *HTTPServer) pageParams(r *http.Request) (from, size int, err error) {
	from = models.DefaultPageFrom
	size = s.defaults.DefaultSize
	if size == 0 {
		size = models.DefaultPageSize
	}

	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, fmt.Errorf("from must be an integer")
		}
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		size, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, fmt.Errorf("size must be an integer")
		}
	}
	return from, size, nil
}
