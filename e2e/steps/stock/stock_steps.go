package stock

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Do(ctx context.Context, method, path string, body any) error
	ActAs(alias string) error
	Decode(v any) error
	ExpectStatus(want int) error
}

// RegisterSteps registers stock ledger steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &stockSteps{tc: tc}

	ctx.Step(`^"([^"]*)" (increases|decreases) "([^"]*)" stock by (-?\d+) units?$`, steps.adjust)
	ctx.Step(`^"([^"]*)" should hold (\d+) units? of "([^"]*)"$`, steps.shouldHold)
	ctx.Step(`^"([^"]*)" should hold no stock$`, steps.shouldHoldNothing)
}

type stockSteps struct {
	tc TestContext
}

type stockResponse struct {
	Stock map[string]int `json:"stock"`
}

func (s *stockSteps) adjust(ctx context.Context, bank, direction, group string, units int) error {
	if err := s.tc.ActAs(bank); err != nil {
		return err
	}
	path := "/bank/stock/increase"
	if direction == "decreases" {
		path = "/bank/stock/decrease"
	}
	return s.tc.Do(ctx, "PUT", path, map[string]any{"blood_group": group, "units": units})
}

func (s *stockSteps) read(ctx context.Context, bank string) (map[string]int, error) {
	if err := s.tc.ActAs(bank); err != nil {
		return nil, err
	}
	if err := s.tc.Do(ctx, "GET", "/bank/stock", nil); err != nil {
		return nil, err
	}
	if err := s.tc.ExpectStatus(200); err != nil {
		return nil, err
	}
	var resp stockResponse
	if err := s.tc.Decode(&resp); err != nil {
		return nil, err
	}
	return resp.Stock, nil
}

func (s *stockSteps) shouldHold(ctx context.Context, bank string, units int, group string) error {
	stock, err := s.read(ctx, bank)
	if err != nil {
		return err
	}
	got, ok := stock[group]
	if !ok {
		return fmt.Errorf("stock has no entry for %s: %v", group, stock)
	}
	if got != units {
		return fmt.Errorf("expected %d units of %s, got %d", units, group, got)
	}
	return nil
}

func (s *stockSteps) shouldHoldNothing(ctx context.Context, bank string) error {
	stock, err := s.read(ctx, bank)
	if err != nil {
		return err
	}
	if len(stock) != 8 {
		return fmt.Errorf("expected all 8 blood groups, got %v", stock)
	}
	for group, units := range stock {
		if units != 0 {
			return fmt.Errorf("expected empty stock, %s holds %d", group, units)
		}
	}
	return nil
}
