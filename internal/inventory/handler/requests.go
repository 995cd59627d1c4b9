package handler

import (
	"strings"

	id "redhope/pkg/domain"
)

// AdjustStockRequest is the body of PUT /bank/stock/increase and /decrease.
type AdjustStockRequest struct {
	BloodGroup string `json:"blood_group"`
	Units      int    `json:"units"`

	parsedBloodGroup id.BloodGroup
}

func (r *AdjustStockRequest) Normalize() {
	r.BloodGroup = strings.ToUpper(strings.TrimSpace(r.BloodGroup))
}

func (r *AdjustStockRequest) Validate() error {
	bg, err := id.ParseBloodGroup(r.BloodGroup)
	if err != nil {
		return err
	}
	if err := id.ValidateUnits(r.Units); err != nil {
		return err
	}
	r.parsedBloodGroup = bg
	return nil
}
