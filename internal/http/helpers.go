package http

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"steptrack/internal/core"
)

// isHTMXRequest reports whether the request was issued by htmx.
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// parseSteps parses a step count form value. Steps must be a whole
// non-negative number.
func parseSteps(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	steps, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if steps < 0 {
		return 0, core.ErrNegativeSteps
	}
	return steps, nil
}

// optionalFormValue returns a pointer to the sanitized form value, or
// nil when the field is empty.
func optionalFormValue(r *http.Request, field string) *string {
	v := sanitizeInput(r.FormValue(field))
	if v == "" {
		return nil
	}
	return &v
}

func (s *Server) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"amount": func(m core.Money) string {
			return m.Format(s.currency)
		},
		"rate": core.FormatCompletionRate,
		"statusClass": func(st core.Status) string {
			if st == core.StatusOnTarget {
				return "status-ok"
			}
			return "status-missed"
		},
	}
}
