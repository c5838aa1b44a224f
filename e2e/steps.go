package e2e

import (
	"github.com/cucumber/godog"

	"inkwell/e2e/steps/admin"
	"inkwell/e2e/steps/admission"
	"inkwell/e2e/steps/auth"
	"inkwell/e2e/steps/common"
)

// RegisterSteps registers all step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	auth.RegisterSteps(ctx, tc)
	admission.RegisterSteps(ctx, tc)
	admin.RegisterSteps(ctx, tc)
}
