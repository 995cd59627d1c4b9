package common

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Do(ctx context.Context, method, path string, body any) error
	ActAs(alias string) error
	Expand(s string) string
	Remember(alias, value string)
	Field(path string) (any, error)
	Decode(v any) error
	ExpectStatus(want int) error
}

// RegisterSteps registers generic request and assertion steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^the service is healthy$`, steps.serviceIsHealthy)
	ctx.Step(`^I am acting as "([^"]*)"$`, steps.actAs)
	ctx.Step(`^I am anonymous$`, steps.anonymous)
	ctx.Step(`^I send a (GET|POST|PUT) request to "([^"]*)"$`, steps.send)
	ctx.Step(`^I send a (GET|POST|PUT) request to "([^"]*)" with body:$`, steps.sendWithBody)

	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the response error should be "([^"]*)"$`, steps.errorShouldBe)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, steps.fieldShouldEqual)
	ctx.Step(`^the response should list (\d+) items?$`, steps.shouldList)
	ctx.Step(`^I remember the response field "([^"]*)" as "([^"]*)"$`, steps.rememberField)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) serviceIsHealthy(ctx context.Context) error {
	if err := s.tc.Do(ctx, "GET", "/health", nil); err != nil {
		return err
	}
	return s.tc.ExpectStatus(200)
}

func (s *commonSteps) actAs(ctx context.Context, alias string) error {
	return s.tc.ActAs(alias)
}

func (s *commonSteps) anonymous(ctx context.Context) error {
	return s.tc.ActAs("")
}

func (s *commonSteps) send(ctx context.Context, method, path string) error {
	return s.tc.Do(ctx, method, path, nil)
}

func (s *commonSteps) sendWithBody(ctx context.Context, method, path string, body *godog.DocString) error {
	return s.tc.Do(ctx, method, path, body.Content)
}

func (s *commonSteps) statusShouldBe(ctx context.Context, status int) error {
	return s.tc.ExpectStatus(status)
}

func (s *commonSteps) errorShouldBe(ctx context.Context, code string) error {
	return s.fieldShouldEqual(ctx, "error", code)
}

func (s *commonSteps) fieldShouldEqual(ctx context.Context, field, expected string) error {
	v, err := s.tc.Field(field)
	if err != nil {
		return err
	}
	want := s.tc.Expand(expected)
	if got := fmt.Sprint(v); got != want {
		return fmt.Errorf("field %q: expected %q, got %q", field, want, got)
	}
	return nil
}

func (s *commonSteps) shouldList(ctx context.Context, count int) error {
	var items []any
	if err := s.tc.Decode(&items); err != nil {
		return err
	}
	if len(items) != count {
		return fmt.Errorf("expected %d items, got %d", count, len(items))
	}
	return nil
}

func (s *commonSteps) rememberField(ctx context.Context, field, alias string) error {
	v, err := s.tc.Field(field)
	if err != nil {
		return err
	}
	s.tc.Remember(alias, fmt.Sprint(v))
	return nil
}
