package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"inkwell/internal/ratelimit/models"
)

// ConfigSuite tests environment parsing.
//
// Justification: a typo in a limit variable must fail startup rather than
// silently fall back to a default budget.
type ConfigSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) TestDefaults() {
	cfg, err := FromEnv()
	s.Require().NoError(err)

	s.Equal(":8080", cfg.Server.Addr)
	s.Equal(7*24*time.Hour, cfg.Token.AccessTTL)
	s.Equal(30*24*time.Hour, cfg.Token.RefreshTTL)
	s.Equal(models.Limit{Window: 15 * time.Minute, Max: 5}, cfg.RateLimit.Scopes[models.ScopeAuth])
	s.Equal(90*24*time.Hour, cfg.Audit.Retention)
	s.Equal(250*time.Millisecond, cfg.StoreTimeout)
	s.Equal("memory", cfg.Audit.Driver)
	s.Equal(10_000, cfg.Kafka.MaxBufferedRecords)
	s.True(cfg.Tracing.Enabled)
}

func (s *ConfigSuite) TestScopeOverrides() {
	s.T().Setenv("RATE_LIMIT_AI_GENERATION_WINDOW", "30s")
	s.T().Setenv("RATE_LIMIT_AI_GENERATION_MAX", "3")
	s.T().Setenv("RATE_LIMIT_AUTH_FAIL_CLOSED", "true")
	s.T().Setenv("AUTO_BLOCK_THRESHOLD", "4")
	s.T().Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.0/12")

	cfg, err := FromEnv()
	s.Require().NoError(err)

	s.Equal(models.Limit{Window: 30 * time.Second, Max: 3}, cfg.RateLimit.Scopes[models.ScopeAIGeneration])
	s.True(cfg.RateLimit.Scopes[models.ScopeAuth].FailClosed)
	s.Equal(4, cfg.RateLimit.AutoBlock.Threshold)
	s.Equal([]string{"10.0.0.0/8", "172.16.0.0/12"}, cfg.Server.TrustedProxies)
}

func (s *ConfigSuite) TestMalformedValuesAreAllReported() {
	s.T().Setenv("RATE_LIMIT_AUTH_MAX", "five")
	s.T().Setenv("ACCESS_TOKEN_TTL", "7 days")

	_, err := FromEnv()
	s.Require().Error(err)
	s.Contains(err.Error(), "RATE_LIMIT_AUTH_MAX")
	s.Contains(err.Error(), "ACCESS_TOKEN_TTL")
}

func (s *ConfigSuite) TestSecretsMustDiffer() {
	s.T().Setenv("JWT_ACCESS_SECRET", "same")
	s.T().Setenv("JWT_REFRESH_SECRET", "same")

	_, err := FromEnv()
	s.ErrorContains(err, "must differ")
}

func (s *ConfigSuite) TestProductionRefusesDevSecrets() {
	s.T().Setenv("ENVIRONMENT", "production")

	_, err := FromEnv()
	s.ErrorContains(err, "development JWT secrets")
}

func (s *ConfigSuite) TestPostgresAuditNeedsDatabase() {
	s.T().Setenv("AUDIT_DRIVER", "postgres")

	_, err := FromEnv()
	s.ErrorContains(err, "requires DATABASE_URL")
}

func (s *ConfigSuite) TestProductionRefusesDemoData() {
	s.T().Setenv("ENVIRONMENT", "production")
	s.T().Setenv("JWT_ACCESS_SECRET", "prod-access")
	s.T().Setenv("JWT_REFRESH_SECRET", "prod-refresh")
	s.T().Setenv("SEED_DEMO_DATA", "true")

	_, err := FromEnv()
	s.ErrorContains(err, "SEED_DEMO_DATA")
}
