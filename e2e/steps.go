package e2e

import (
	"fmt"
	"strconv"

	"github.com/cucumber/godog"

	"campuspass/e2e/steps/enrollment"
	"campuspass/e2e/steps/wallet"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	registerCommonSteps(ctx, tc)

	// Staff enrollment steps
	enrollment.RegisterSteps(ctx, tc)

	// Wallet protocol steps
	wallet.RegisterSteps(ctx, tc)
}

func registerCommonSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	ctx.Step(`^the response status should be (\d+)$`, func(status int) error {
		if tc.StatusCode != status {
			return fmt.Errorf("expected status %d, got %d (body: %s)", status, tc.StatusCode, tc.Body)
		}
		return nil
	})

	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, func(field, expected string) error {
		value, err := tc.GetResponseField(field)
		if err != nil {
			return err
		}
		switch v := value.(type) {
		case string:
			if v != expected {
				return fmt.Errorf("field %q: expected %q, got %q", field, expected, v)
			}
		case bool:
			if strconv.FormatBool(v) != expected {
				return fmt.Errorf("field %q: expected %q, got %v", field, expected, v)
			}
		default:
			return fmt.Errorf("field %q has unexpected type %T", field, value)
		}
		return nil
	})

	ctx.Step(`^the response header "([^"]*)" should be set$`, func(name string) error {
		if tc.Headers.Get(name) == "" {
			return fmt.Errorf("header %q is not set", name)
		}
		return nil
	})
}
