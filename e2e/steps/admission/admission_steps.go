package admission

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	POSTWithHeaders(path string, body any, headers map[string]string) error
	GET(path string, headers map[string]string) error
	GetLastResponseStatus() int
	GetLastResponseHeader(name string) string
	GetAccessToken() string
}

// RegisterSteps registers admission pipeline step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &admissionSteps{tc: tc}

	ctx.Step(`^I attempt to log in as "([^"]*)" (\d+) times with the wrong password$`, steps.failLoginNTimes)
	ctx.Step(`^the attempts should return "([^"]*)"$`, steps.attemptsShouldReturn)
	ctx.Step(`^the rate limit headers should be present$`, steps.rateLimitHeadersPresent)
	ctx.Step(`^I create a book titled "([^"]*)"$`, steps.createBook)
	ctx.Step(`^I create a book with the raw body '([^']*)'$`, steps.createBookRaw)
	ctx.Step(`^I queue an? "([^"]*)" generation for book "([^"]*)"$`, steps.queueGeneration)
}

type admissionSteps struct {
	tc       TestContext
	statuses []int
}

func (s *admissionSteps) failLoginNTimes(ctx context.Context, email string, n int) error {
	s.statuses = s.statuses[:0]
	for range n {
		if err := s.tc.POST("/auth/login", map[string]string{"email": email, "password": "not-the-password"}); err != nil {
			return err
		}
		s.statuses = append(s.statuses, s.tc.GetLastResponseStatus())
	}
	return nil
}

func (s *admissionSteps) attemptsShouldReturn(ctx context.Context, expected string) error {
	parts := strings.Split(expected, ",")
	if len(parts) != len(s.statuses) {
		return fmt.Errorf("expected %d attempts, made %d: %v", len(parts), len(s.statuses), s.statuses)
	}
	for i, p := range parts {
		want, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return fmt.Errorf("bad expected status %q", p)
		}
		if s.statuses[i] != want {
			return fmt.Errorf("attempt %d: expected %d, got %d (all: %v)", i+1, want, s.statuses[i], s.statuses)
		}
	}
	return nil
}

func (s *admissionSteps) rateLimitHeadersPresent(ctx context.Context) error {
	for _, h := range []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"} {
		if s.tc.GetLastResponseHeader(h) == "" {
			return fmt.Errorf("header %s missing", h)
		}
	}
	return nil
}

func (s *admissionSteps) createBook(ctx context.Context, title string) error {
	return s.tc.POSTWithHeaders("/api/books", map[string]string{"title": title}, s.bearer())
}

func (s *admissionSteps) createBookRaw(ctx context.Context, body string) error {
	return s.tc.POSTWithHeaders("/api/books", body, s.bearer())
}

func (s *admissionSteps) queueGeneration(ctx context.Context, kind, bookID string) error {
	body := map[string]string{"book_id": bookID, "kind": kind, "prompt": "a quiet harbour town in winter"}
	return s.tc.POSTWithHeaders("/api/generations", body, s.bearer())
}

func (s *admissionSteps) bearer() map[string]string {
	if s.tc.GetAccessToken() == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + s.tc.GetAccessToken()}
}
