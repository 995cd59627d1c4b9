package records

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Do(ctx context.Context, method, path string, body any) error
	ActAs(alias string) error
	ID(alias string) (string, error)
	Remember(alias, value string)
	Field(path string) (any, error)
	Decode(v any) error
	ExpectStatus(want int) error
}

// RegisterSteps registers donation and request record steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &recordSteps{tc: tc}

	ctx.Step(`^"([^"]*)" donates (\d+) units? of "([^"]*)" to "([^"]*)" as "([^"]*)"$`, steps.donate)
	ctx.Step(`^"([^"]*)" requests (\d+) units? of "([^"]*)" from "([^"]*)" as "([^"]*)"$`, steps.request)
	ctx.Step(`^"([^"]*)" sets the status of (donation|request) "([^"]*)" to (\d+)$`, steps.setStatus)
	ctx.Step(`^"([^"]*)" should see (\d+) (donations|requests)$`, steps.shouldSee)
	ctx.Step(`^bank "([^"]*)" should see (\d+) (donations|requests)$`, steps.bankShouldSee)
}

type recordSteps struct {
	tc TestContext
}

func (s *recordSteps) create(ctx context.Context, user, path string, body map[string]any, alias string) error {
	if err := s.tc.ActAs(user); err != nil {
		return err
	}
	if err := s.tc.Do(ctx, "POST", path, body); err != nil {
		return err
	}
	if err := s.tc.ExpectStatus(201); err != nil {
		return err
	}
	recordID, err := s.tc.Field("id")
	if err != nil {
		return err
	}
	s.tc.Remember(alias, fmt.Sprint(recordID))
	return nil
}

func (s *recordSteps) donate(ctx context.Context, user string, units int, group, bank, alias string) error {
	bankID, err := s.tc.ID(bank)
	if err != nil {
		return err
	}
	body := map[string]any{"bank_id": bankID, "blood_group": group, "units": units}
	return s.create(ctx, user, "/user/donate", body, alias)
}

func (s *recordSteps) request(ctx context.Context, user string, units int, group, bank, alias string) error {
	bankID, err := s.tc.ID(bank)
	if err != nil {
		return err
	}
	body := map[string]any{"bank_id": bankID, "blood_group": group, "units": units, "urgent": true}
	return s.create(ctx, user, "/user/request", body, alias)
}

func (s *recordSteps) setStatus(ctx context.Context, bank, kind, alias string, status int) error {
	recordID, err := s.tc.ID(alias)
	if err != nil {
		return err
	}
	if err := s.tc.ActAs(bank); err != nil {
		return err
	}
	return s.tc.Do(ctx, "PUT", "/bank/"+kind+"s", map[string]any{"id": recordID, "status": status})
}

func (s *recordSteps) count(ctx context.Context, actor, path string) (int, error) {
	if err := s.tc.ActAs(actor); err != nil {
		return 0, err
	}
	if err := s.tc.Do(ctx, "GET", path, nil); err != nil {
		return 0, err
	}
	if err := s.tc.ExpectStatus(200); err != nil {
		return 0, err
	}
	var items []map[string]any
	if err := s.tc.Decode(&items); err != nil {
		return 0, err
	}
	return len(items), nil
}

func (s *recordSteps) shouldSee(ctx context.Context, user string, want int, kind string) error {
	got, err := s.count(ctx, user, "/user/"+kind)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%s: expected %d %s, got %d", user, want, kind, got)
	}
	return nil
}

func (s *recordSteps) bankShouldSee(ctx context.Context, bank string, want int, kind string) error {
	got, err := s.count(ctx, bank, "/bank/"+kind)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%s: expected %d %s, got %d", bank, want, kind, got)
	}
	return nil
}
