package handler

import (
	"strings"

	id "redhope/pkg/domain"
	dErrors "redhope/pkg/domain-errors"
)

// CreateRecordRequest is the body of POST /user/donate and /user/request.
// Urgent is ignored for donations.
type CreateRecordRequest struct {
	BankID     string `json:"bank_id"`
	BloodGroup string `json:"blood_group"`
	Units      int    `json:"units"`
	Urgent     bool   `json:"urgent"`

	parsedBankID     id.BankID
	parsedBloodGroup id.BloodGroup
}

func (r *CreateRecordRequest) Normalize() {
	r.BankID = strings.TrimSpace(r.BankID)
	r.BloodGroup = strings.ToUpper(strings.TrimSpace(r.BloodGroup))
}

func (r *CreateRecordRequest) Validate() error {
	bankID, err := id.ParseBankID(r.BankID)
	if err != nil {
		return err
	}
	bg, err := id.ParseBloodGroup(r.BloodGroup)
	if err != nil {
		return err
	}
	if err := id.ValidateUnits(r.Units); err != nil {
		return err
	}
	r.parsedBankID, r.parsedBloodGroup = bankID, bg
	return nil
}

// UpdateStatusRequest is the body of PUT /bank/donations and /bank/requests.
type UpdateStatusRequest struct {
	ID     string `json:"id"`
	Status *int   `json:"status"`

	parsedID id.RecordID
}

func (r *UpdateStatusRequest) Normalize() {
	r.ID = strings.TrimSpace(r.ID)
}

func (r *UpdateStatusRequest) Validate() error {
	recordID, err := id.ParseRecordID(r.ID)
	if err != nil {
		return err
	}
	if r.Status == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "status is required")
	}
	r.parsedID = recordID
	return nil
}
