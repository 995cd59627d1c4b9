package handler

import (
	"strings"
	"time"

	"redhope/internal/camp/models"
	identity "redhope/internal/identity/models"
	id "redhope/pkg/domain"
	dErrors "redhope/pkg/domain-errors"
)

// CreateCampRequest is the body of POST /camps. Date is either a calendar
// day or an RFC 3339 timestamp.
type CreateCampRequest struct {
	Name     string `json:"name"`
	State    string `json:"state"`
	District string `json:"district"`
	Address  string `json:"address"`
	Date     string `json:"date"`

	parsedDate time.Time
}

func (r *CreateCampRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.State = strings.TrimSpace(r.State)
	r.District = strings.TrimSpace(r.District)
	r.Address = strings.TrimSpace(r.Address)
	r.Date = strings.TrimSpace(r.Date)
}

func (r *CreateCampRequest) Validate() error {
	if r.Date == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "date is required")
	}
	if t, err := time.Parse(time.RFC3339, r.Date); err == nil {
		r.parsedDate = t
	} else if t, err := time.Parse(models.DayLayout, r.Date); err == nil {
		r.parsedDate = t
	} else {
		return dErrors.New(dErrors.CodeInvalidInput, "date must be YYYY-MM-DD or RFC 3339")
	}
	in := r.ToInput()
	return in.Validate()
}

func (r *CreateCampRequest) ToInput() models.CampInput {
	return models.CampInput{
		Name: r.Name,
		Location: identity.Location{
			State:    r.State,
			District: r.District,
			Address:  r.Address,
		},
		Date: r.parsedDate,
	}
}

// FulfillRequest is the body of PUT /camps/{campID}/{userID}.
type FulfillRequest struct {
	Units int `json:"units"`
}

func (r *FulfillRequest) Validate() error {
	return id.ValidateUnits(r.Units)
}
