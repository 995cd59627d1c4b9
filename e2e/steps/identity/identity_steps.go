package identity

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

const password = "donor-secret-42"

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Do(ctx context.Context, method, path string, body any) error
	ActAs(alias string) error
	Expand(s string) string
	RunID() string
	Remember(alias, value string)
	SetToken(alias, token string)
	Field(path string) (any, error)
	ExpectStatus(want int) error
}

// RegisterSteps registers account and session steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &identitySteps{tc: tc}

	ctx.Step(`^a registered user "([^"]*)" with blood group "([^"]*)" in "([^"]*)", "([^"]*)"$`, steps.registeredUser)
	ctx.Step(`^a registered bank "([^"]*)" in "([^"]*)", "([^"]*)"$`, steps.registeredBank)
	ctx.Step(`^"([^"]*)" logs out$`, steps.logout)
	ctx.Step(`^"([^"]*)" fetches their profile$`, steps.fetchProfile)
}

type identitySteps struct {
	tc TestContext
}

func (s *identitySteps) email(alias string) string {
	return fmt.Sprintf("%s-%s@redhope.test", alias, s.tc.RunID())
}

func (s *identitySteps) registeredUser(ctx context.Context, alias, group, state, district string) error {
	body := map[string]any{
		"name":        alias,
		"email":       s.email(alias),
		"password":    password,
		"phone":       "9000000000",
		"blood_group": group,
		"location": map[string]string{
			"state":    s.tc.Expand(state),
			"district": s.tc.Expand(district),
			"address":  "1 Main Road",
		},
	}
	return s.register(ctx, alias, "user", body)
}

func (s *identitySteps) registeredBank(ctx context.Context, alias, state, district string) error {
	body := map[string]any{
		"name":     alias,
		"hospital": alias + " General",
		"email":    s.email(alias),
		"password": password,
		"phone":    "9100000000",
		"location": map[string]string{
			"state":    s.tc.Expand(state),
			"district": s.tc.Expand(district),
			"address":  "2 Hospital Lane",
		},
	}
	return s.register(ctx, alias, "bank", body)
}

func (s *identitySteps) register(ctx context.Context, alias, role string, body map[string]any) error {
	if err := s.tc.ActAs(""); err != nil {
		return err
	}
	if err := s.tc.Do(ctx, "POST", "/auth/register/"+role, body); err != nil {
		return err
	}
	if err := s.tc.ExpectStatus(201); err != nil {
		return err
	}
	subject, err := s.tc.Field("id")
	if err != nil {
		return err
	}
	s.tc.Remember(alias, fmt.Sprint(subject))

	login := map[string]string{"email": s.email(alias), "password": password, "role": role}
	if err := s.tc.Do(ctx, "POST", "/auth/login", login); err != nil {
		return err
	}
	if err := s.tc.ExpectStatus(200); err != nil {
		return err
	}
	token, err := s.tc.Field("access_token")
	if err != nil {
		return err
	}
	s.tc.SetToken(alias, fmt.Sprint(token))
	return s.tc.ActAs(alias)
}

func (s *identitySteps) logout(ctx context.Context, alias string) error {
	if err := s.tc.ActAs(alias); err != nil {
		return err
	}
	if err := s.tc.Do(ctx, "POST", "/auth/logout", nil); err != nil {
		return err
	}
	return s.tc.ExpectStatus(204)
}

func (s *identitySteps) fetchProfile(ctx context.Context, alias string) error {
	if err := s.tc.ActAs(alias); err != nil {
		return err
	}
	return s.tc.Do(ctx, "GET", "/user", nil)
}
