package models

import (
	"time"

	id "redhope/pkg/domain"
)

// User is a donor/recipient account.
type User struct {
	ID           id.UserID
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	BloodGroup   id.BloodGroup
	Location     Location
	CreatedAt    time.Time
}

// Bank is a blood bank account. Stock and record back-references live with
// the inventory and records contexts, not here.
type Bank struct {
	ID           id.BankID
	Name         string
	Hospital     string
	Email        string
	PasswordHash string
	Phone        string
	Location     Location
	CreatedAt    time.Time
}

// Location is the state/district/address triple shared by users, banks and camps.
type Location struct {
	State    string `json:"state"`
	District string `json:"district"`
	Address  string `json:"address"`
}

// UserProfile is the public projection of a User: no credentials.
type UserProfile struct {
	ID         id.UserID     `json:"id"`
	Name       string        `json:"name"`
	Email      string        `json:"email"`
	Phone      string        `json:"phone"`
	BloodGroup id.BloodGroup `json:"blood_group"`
	Location
}

// BankProfile is the public projection of a Bank: no credentials, stock or
// back-reference lists.
type BankProfile struct {
	ID       id.BankID `json:"id"`
	Name     string    `json:"name"`
	Hospital string    `json:"hospital"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	Location
}

func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Phone:      u.Phone,
		BloodGroup: u.BloodGroup,
		Location:   u.Location,
	}
}

func (b *Bank) Profile() BankProfile {
	return BankProfile{
		ID:       b.ID,
		Name:     b.Name,
		Hospital: b.Hospital,
		Email:    b.Email,
		Phone:    b.Phone,
		Location: b.Location,
	}
}

// UserUpdate carries the mutable profile fields. Nil means unchanged.
type UserUpdate struct {
	Name       *string
	Phone      *string
	BloodGroup *id.BloodGroup
	Location   *Location
}

// BankUpdate carries the mutable profile fields. Nil means unchanged.
type BankUpdate struct {
	Name     *string
	Hospital *string
	Phone    *string
	Location *Location
}

// Apply copies the set fields onto u.
func (up UserUpdate) Apply(u *User) {
	if up.Name != nil {
		u.Name = *up.Name
	}
	if up.Phone != nil {
		u.Phone = *up.Phone
	}
	if up.BloodGroup != nil {
		u.BloodGroup = *up.BloodGroup
	}
	if up.Location != nil {
		u.Location = *up.Location
	}
}

// Apply copies the set fields onto b.
func (up BankUpdate) Apply(b *Bank) {
	if up.Name != nil {
		b.Name = *up.Name
	}
	if up.Hospital != nil {
		b.Hospital = *up.Hospital
	}
	if up.Phone != nil {
		b.Phone = *up.Phone
	}
	if up.Location != nil {
		b.Location = *up.Location
	}
}

// Session is the result of a successful login.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Role        id.Role   `json:"role"`
	SubjectID   string    `json:"subject_id"`
}

// RegisterUserInput is the validated payload for user sign-up.
type RegisterUserInput struct {
	Name       string
	Email      string
	Password   string
	Phone      string
	BloodGroup id.BloodGroup
	Location   Location
}

// RegisterBankInput is the validated payload for bank sign-up.
type RegisterBankInput struct {
	Name     string
	Hospital string
	Email    string
	Password string
	Phone    string
	Location Location
}
