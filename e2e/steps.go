package e2e

import (
	"github.com/cucumber/godog"

	"redhope/e2e/steps/camp"
	"redhope/e2e/steps/common"
	"redhope/e2e/steps/identity"
	"redhope/e2e/steps/records"
	"redhope/e2e/steps/stock"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Background, generic requests and response assertions
	common.RegisterSteps(ctx, tc)

	// Accounts and sessions
	identity.RegisterSteps(ctx, tc)

	stock.RegisterSteps(ctx, tc)
	records.RegisterSteps(ctx, tc)
	camp.RegisterSteps(ctx, tc)
}
