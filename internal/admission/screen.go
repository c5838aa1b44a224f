package admission

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"
)

// Pattern is one named malicious-input signature.
type Pattern struct {
	Name string
	Expr *regexp.Regexp
}

// DefaultPatterns covers script injection, SQL injection, path traversal and
// query-operator injection.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{Name: "script_tag", Expr: regexp.MustCompile(`(?i)<\s*/?\s*script\b`)},
		{Name: "event_handler", Expr: regexp.MustCompile(`(?i)<[^>]*\bon[a-z]+\s*=`)},
		{Name: "javascript_uri", Expr: regexp.MustCompile(`(?i)\b(java|vb)script\s*:`)},
		{Name: "embedded_frame", Expr: regexp.MustCompile(`(?i)<\s*(iframe|object|embed|frameset)\b`)},
		{Name: "sql_union", Expr: regexp.MustCompile(`(?i)\bunion\s+(all\s+)?select\b`)},
		{Name: "sql_tautology", Expr: regexp.MustCompile(`(?i)['"]\s*or\s+['"]?\w+['"]?\s*=\s*['"]?\w+`)},
		{Name: "sql_stacked", Expr: regexp.MustCompile(`(?i);\s*(drop|truncate|alter|delete\s+from|insert\s+into|update\s+\w+\s+set)\b`)},
		{Name: "path_traversal", Expr: regexp.MustCompile(`(\.\./|\.\.\\|%2e%2e%2f)`)},
	}
}

var operatorKey = regexp.MustCompile(`^\$[A-Za-z]+$`)

// Match describes the first screened field that matched a pattern.
type Match struct {
	Field   string
	Pattern string
}

// Screener scans query values and JSON bodies for malicious patterns.
type Screener struct {
	patterns []Pattern
	maxBody  int64
}

// ErrBodyTooLarge is returned when the body exceeds the screen's read limit.
var ErrBodyTooLarge = errors.New("request body exceeds screen limit")

// NewScreener creates a screener over patterns, or DefaultPatterns when none
// are given. maxBody caps how much of the body is read.
func NewScreener(maxBody int64, patterns ...Pattern) *Screener {
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
	}
	return &Screener{patterns: patterns, maxBody: maxBody}
}

// Scan returns the first match in the query string or body, or nil. The
// body is restored so downstream handlers can read it again.
func (s *Screener) Scan(r *http.Request) (*Match, error) {
	query := r.URL.Query()
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if m := s.match("query."+k, k); m != nil {
			return m, nil
		}
		for _, v := range query[k] {
			if m := s.match("query."+k, v); m != nil {
				return m, nil
			}
		}
	}

	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, s.maxBody+1))
	_ = r.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(raw)) > s.maxBody {
		return nil, ErrBodyTooLarge
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if len(raw) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		// Not JSON: screen the raw text so malformed bodies cannot bypass the check.
		return s.match("body", string(raw)), nil
	}
	return s.walk("body", doc), nil
}

func (s *Screener) walk(path string, v any) *Match {
	switch val := v.(type) {
	case string:
		return s.match(path, val)
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			child := path + "." + k
			if operatorKey.MatchString(k) {
				return &Match{Field: child, Pattern: "operator_key"}
			}
			if m := s.match(child, k); m != nil {
				return m
			}
			if m := s.walk(child, val[k]); m != nil {
				return m
			}
		}
	case []any:
		for i, item := range val {
			if m := s.walk(path+"["+strconv.Itoa(i)+"]", item); m != nil {
				return m
			}
		}
	}
	return nil
}

func (s *Screener) match(field, value string) *Match {
	if value == "" {
		return nil
	}
	for _, p := range s.patterns {
		if p.Expr.MatchString(value) {
			return &Match{Field: field, Pattern: p.Name}
		}
	}
	return nil
}
