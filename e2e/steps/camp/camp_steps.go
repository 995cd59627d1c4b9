package camp

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
	ID(alias string) (string, error)
	Remember(alias, value string)
	Field(path string) (any, error)
	Decode(v any) error
	ExpectStatus(want int) error
}

// RegisterSteps registers donation camp steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &campSteps{tc: tc}

	ctx.Step(`^"([^"]*)" organises camp "([^"]*)" in "([^"]*)", "([^"]*)" on "([^"]*)"$`, steps.organise)
	ctx.Step(`^"([^"]*)" enrolls in camp "([^"]*)"$`, steps.enroll)
	ctx.Step(`^"([^"]*)" records (\d+) units? from "([^"]*)" at camp "([^"]*)"$`, steps.fulfill)
	ctx.Step(`^the public listing for "([^"]*)", "([^"]*)" on "([^"]*)" should show (\d+) camps?$`, steps.publicListing)
	ctx.Step(`^camp "([^"]*)" of "([^"]*)" should list "([^"]*)" with status (\d+) and (\d+) units?$`, steps.rosterEntry)
	ctx.Step(`^camp "([^"]*)" of "([^"]*)" should have (\d+) donors?$`, steps.rosterSize)
}

type campSteps struct {
	tc TestContext
}

type donor struct {
	UserID string `json:"user_id"`
	Status int    `json:"status"`
	Units  int    `json:"units"`
}

type campWithRoster struct {
	ID     string  `json:"id"`
	Donors []donor `json:"donors"`
}

func (s *campSteps) organise(ctx context.Context, bank, name, state, district, date string) error {
	if err := s.tc.ActAs(bank); err != nil {
		return err
	}
	body := map[string]string{
		"name":     name,
		"state":    s.tc.Expand(state),
		"district": s.tc.Expand(district),
		"address":  "Town Hall",
		"date":     date,
	}
	if err := s.tc.Do(ctx, "POST", "/camps", body); err != nil {
		return err
	}
	if err := s.tc.ExpectStatus(201); err != nil {
		return err
	}
	campID, err := s.tc.Field("id")
	if err != nil {
		return err
	}
	s.tc.Remember(name, fmt.Sprint(campID))
	return nil
}

func (s *campSteps) enroll(ctx context.Context, user, camp string) error {
	campID, err := s.tc.ID(camp)
	if err != nil {
		return err
	}
	if err := s.tc.ActAs(user); err != nil {
		return err
	}
	return s.tc.Do(ctx, "PUT", "/camps/"+campID, nil)
}

func (s *campSteps) fulfill(ctx context.Context, bank string, units int, user, camp string) error {
	campID, err := s.tc.ID(camp)
	if err != nil {
		return err
	}
	userID, err := s.tc.ID(user)
	if err != nil {
		return err
	}
	if err := s.tc.ActAs(bank); err != nil {
		return err
	}
	return s.tc.Do(ctx, "PUT", "/camps/"+campID+"/"+userID, map[string]int{"units": units})
}

func (s *campSteps) publicListing(ctx context.Context, state, district, date string, want int) error {
	if err := s.tc.ActAs(""); err != nil {
		return err
	}
	path := fmt.Sprintf("/camps/all/%s/%s/%s", s.tc.Expand(state), s.tc.Expand(district), date)
	if err := s.tc.Do(ctx, "GET", path, nil); err != nil {
		return err
	}
	if err := s.tc.ExpectStatus(200); err != nil {
		return err
	}
	var camps []map[string]any
	if err := s.tc.Decode(&camps); err != nil {
		return err
	}
	if len(camps) != want {
		return fmt.Errorf("expected %d camps, got %d", want, len(camps))
	}
	return nil
}

func (s *campSteps) roster(ctx context.Context, camp, bank string) ([]donor, error) {
	campID, err := s.tc.ID(camp)
	if err != nil {
		return nil, err
	}
	if err := s.tc.ActAs(bank); err != nil {
		return nil, err
	}
	if err := s.tc.Do(ctx, "GET", "/camps", nil); err != nil {
		return nil, err
	}
	if err := s.tc.ExpectStatus(200); err != nil {
		return nil, err
	}
	var camps []campWithRoster
	if err := s.tc.Decode(&camps); err != nil {
		return nil, err
	}
	for _, c := range camps {
		if c.ID == campID {
			return c.Donors, nil
		}
	}
	return nil, fmt.Errorf("camp %q not listed for %s", camp, bank)
}

func (s *campSteps) rosterEntry(ctx context.Context, camp, bank, user string, status, units int) error {
	donors, err := s.roster(ctx, camp, bank)
	if err != nil {
		return err
	}
	userID, err := s.tc.ID(user)
	if err != nil {
		return err
	}
	for _, d := range donors {
		if d.UserID != userID {
			continue
		}
		if d.Status != status || d.Units != units {
			return fmt.Errorf("%s: expected status %d with %d units, got status %d with %d units",
				user, status, units, d.Status, d.Units)
		}
		return nil
	}
	return fmt.Errorf("%s is not on the roster of %s", user, camp)
}

func (s *campSteps) rosterSize(ctx context.Context, camp, bank string, want int) error {
	donors, err := s.roster(ctx, camp, bank)
	if err != nil {
		return err
	}
	if len(donors) != want {
		return fmt.Errorf("expected %d donors, got %d", want, len(donors))
	}
	return nil
}
