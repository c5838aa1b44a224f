package auth

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	POSTWithHeaders(path string, body any, headers map[string]string) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetAccessToken() string
	SetAccessToken(token string)
	GetRefreshToken() string
	SetRefreshToken(token string)
	GetCredentials() (email, password string)
	SetCredentials(email, password string)
}

// RegisterSteps registers identity step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &authSteps{tc: tc}

	ctx.Step(`^I register a new writer$`, steps.registerNewWriter)
	ctx.Step(`^I am a registered writer$`, steps.registeredWriter)
	ctx.Step(`^I log in with the correct password$`, steps.loginCorrect)
	ctx.Step(`^I log in with the wrong password$`, steps.loginWrong)
	ctx.Step(`^I log in as unknown user "([^"]*)"$`, steps.loginUnknown)
	ctx.Step(`^I save the credential pair$`, steps.saveCredentialPair)
	ctx.Step(`^I am logged in$`, steps.loggedIn)
	ctx.Step(`^I refresh with the saved refresh credential$`, steps.refreshSaved)
	ctx.Step(`^I refresh with the previous refresh credential$`, steps.refreshPrevious)
	ctx.Step(`^I log out everywhere$`, steps.logoutAll)
	ctx.Step(`^I request my profile$`, steps.requestProfile)
	ctx.Step(`^I request my profile without a credential$`, steps.requestProfileAnonymous)
}

type authSteps struct {
	tc              TestContext
	previousRefresh string
}

func (s *authSteps) registerNewWriter(ctx context.Context) error {
	email := fmt.Sprintf("writer-%s@example.com", uuid.NewString()[:8])
	password := "correct-horse-battery"
	s.tc.SetCredentials(email, password)
	return s.tc.POST("/auth/register", map[string]string{"email": email, "password": password})
}

func (s *authSteps) registeredWriter(ctx context.Context) error {
	if err := s.registerNewWriter(ctx); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != 201 {
		return fmt.Errorf("registration returned %d", s.tc.GetLastResponseStatus())
	}
	return nil
}

func (s *authSteps) loginCorrect(ctx context.Context) error {
	email, password := s.tc.GetCredentials()
	return s.tc.POST("/auth/login", map[string]string{"email": email, "password": password})
}

func (s *authSteps) loginWrong(ctx context.Context) error {
	email, _ := s.tc.GetCredentials()
	return s.tc.POST("/auth/login", map[string]string{"email": email, "password": "not-the-password"})
}

func (s *authSteps) loginUnknown(ctx context.Context, email string) error {
	return s.tc.POST("/auth/login", map[string]string{"email": email, "password": "not-the-password"})
}

func (s *authSteps) saveCredentialPair(ctx context.Context) error {
	access, err := s.tc.GetResponseField("access_token")
	if err != nil {
		return err
	}
	refresh, err := s.tc.GetResponseField("refresh_token")
	if err != nil {
		return err
	}
	s.previousRefresh = s.tc.GetRefreshToken()
	s.tc.SetAccessToken(access.(string))
	s.tc.SetRefreshToken(refresh.(string))
	return nil
}

func (s *authSteps) loggedIn(ctx context.Context) error {
	if err := s.registeredWriter(ctx); err != nil {
		return err
	}
	if err := s.loginCorrect(ctx); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != 200 {
		return fmt.Errorf("login returned %d", s.tc.GetLastResponseStatus())
	}
	return s.saveCredentialPair(ctx)
}

func (s *authSteps) refreshSaved(ctx context.Context) error {
	return s.tc.POST("/auth/refresh", map[string]string{"refresh_token": s.tc.GetRefreshToken()})
}

func (s *authSteps) refreshPrevious(ctx context.Context) error {
	if s.previousRefresh == "" {
		return fmt.Errorf("no previous refresh credential saved")
	}
	return s.tc.POST("/auth/refresh", map[string]string{"refresh_token": s.previousRefresh})
}

func (s *authSteps) logoutAll(ctx context.Context) error {
	return s.tc.POSTWithHeaders("/auth/logout-all", nil, s.bearer())
}

func (s *authSteps) requestProfile(ctx context.Context) error {
	return s.tc.GET("/api/me", s.bearer())
}

func (s *authSteps) requestProfileAnonymous(ctx context.Context) error {
	return s.tc.GET("/api/me", nil)
}

func (s *authSteps) bearer() map[string]string {
	return map[string]string{"Authorization": "Bearer " + s.tc.GetAccessToken()}
}
