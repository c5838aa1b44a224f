package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POSTWithHeaders(path string, body any, headers map[string]string) error
	GET(path string, headers map[string]string) error
	DELETE(path string, headers map[string]string) error
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetClientIP() string
	GetAdminToken() string
	GetOperatorIP() string
}

// RegisterSteps registers operator step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &adminSteps{tc: tc}

	ctx.Step(`^an operator blocks my address for "([^"]*)" because "([^"]*)"$`, steps.blockMyAddress)
	ctx.Step(`^an operator unblocks my address$`, steps.unblockMyAddress)
	ctx.Step(`^an operator looks up the block on my address$`, steps.lookupBlock)
	ctx.Step(`^I call the admin API without the admin token$`, steps.callWithoutToken)
	ctx.Step(`^I call the admin API from my address$`, steps.callFromMyAddress)
	ctx.Step(`^the security log should record "([^"]*)" for my address$`, steps.securityLogShouldRecord)
}

type adminSteps struct {
	tc TestContext
}

// headers speak from the operator's own address, so blocking the
// scenario's address never locks the operator out.
func (s *adminSteps) headers() map[string]string {
	return map[string]string{
		"X-Admin-Token":   s.tc.GetAdminToken(),
		"X-Forwarded-For": s.tc.GetOperatorIP(),
	}
}

func (s *adminSteps) blockMyAddress(ctx context.Context, duration, reason string) error {
	body := map[string]string{"identifier": s.tc.GetClientIP(), "duration": duration, "reason": reason}
	if err := s.tc.POSTWithHeaders("/admin/blocks", body, s.headers()); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != 201 {
		return fmt.Errorf("block returned %d: %s", s.tc.GetLastResponseStatus(), s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *adminSteps) unblockMyAddress(ctx context.Context) error {
	if err := s.tc.DELETE("/admin/blocks/"+url.PathEscape(s.tc.GetClientIP()), s.headers()); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != 204 {
		return fmt.Errorf("unblock returned %d", s.tc.GetLastResponseStatus())
	}
	return nil
}

func (s *adminSteps) lookupBlock(ctx context.Context) error {
	return s.tc.GET("/admin/blocks/"+url.PathEscape(s.tc.GetClientIP()), s.headers())
}

func (s *adminSteps) callWithoutToken(ctx context.Context) error {
	return s.tc.GET("/admin/security-events", nil)
}

func (s *adminSteps) callFromMyAddress(ctx context.Context) error {
	return s.tc.GET("/admin/security-events", map[string]string{"X-Admin-Token": s.tc.GetAdminToken()})
}

func (s *adminSteps) securityLogShouldRecord(ctx context.Context, action string) error {
	if err := s.tc.GET("/admin/security-events?since=15m&limit=1000", s.headers()); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != 200 {
		return fmt.Errorf("security events returned %d", s.tc.GetLastResponseStatus())
	}
	var resp struct {
		Events []struct {
			Action        string `json:"action"`
			SourceAddress string `json:"source_address"`
		} `json:"events"`
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &resp); err != nil {
		return fmt.Errorf("decode security events: %w", err)
	}
	for _, e := range resp.Events {
		if e.Action == action && e.SourceAddress == s.tc.GetClientIP() {
			return nil
		}
	}
	return fmt.Errorf("no %q event from %s among %d events", action, s.tc.GetClientIP(), len(resp.Events))
}
