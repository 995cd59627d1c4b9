package handler

import (
	"strings"

	"redhope/internal/identity/models"
	id "redhope/pkg/domain"
	dErrors "redhope/pkg/domain-errors"
)

const maxFieldLength = 200

type LocationRequest struct {
	State    string `json:"state"`
	District string `json:"district"`
	Address  string `json:"address"`
}

func (l *LocationRequest) normalize() {
	l.State = strings.TrimSpace(l.State)
	l.District = strings.TrimSpace(l.District)
	l.Address = strings.TrimSpace(l.Address)
}

func (l LocationRequest) toModel() models.Location {
	return models.Location{State: l.State, District: l.District, Address: l.Address}
}

// RegisterUserRequest is the body of POST /auth/register/user.
type RegisterUserRequest struct {
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Password   string          `json:"password"`
	Phone      string          `json:"phone"`
	BloodGroup string          `json:"blood_group"`
	Location   LocationRequest `json:"location"`

	parsedBloodGroup id.BloodGroup
}

func (r *RegisterUserRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.BloodGroup = strings.ToUpper(strings.TrimSpace(r.BloodGroup))
	r.Location.normalize()
}

func (r *RegisterUserRequest) Validate() error {
	if r.Name == "" || r.Email == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name, email and password are required")
	}
	if len(r.Name) > maxFieldLength {
		return dErrors.New(dErrors.CodeInvalidInput, "name is too long")
	}
	bg, err := id.ParseBloodGroup(r.BloodGroup)
	if err != nil {
		return err
	}
	r.parsedBloodGroup = bg
	return nil
}

func (r *RegisterUserRequest) ToInput() models.RegisterUserInput {
	return models.RegisterUserInput{
		Name:       r.Name,
		Email:      r.Email,
		Password:   r.Password,
		Phone:      r.Phone,
		BloodGroup: r.parsedBloodGroup,
		Location:   r.Location.toModel(),
	}
}

// RegisterBankRequest is the body of POST /auth/register/bank.
type RegisterBankRequest struct {
	Name     string          `json:"name"`
	Hospital string          `json:"hospital"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Phone    string          `json:"phone"`
	Location LocationRequest `json:"location"`
}

func (r *RegisterBankRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Hospital = strings.TrimSpace(r.Hospital)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Location.normalize()
}

func (r *RegisterBankRequest) Validate() error {
	if r.Name == "" || r.Email == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name, email and password are required")
	}
	if len(r.Name) > maxFieldLength || len(r.Hospital) > maxFieldLength {
		return dErrors.New(dErrors.CodeInvalidInput, "name is too long")
	}
	if r.Location.State == "" || r.Location.District == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "location.state and location.district are required")
	}
	return nil
}

func (r *RegisterBankRequest) ToInput() models.RegisterBankInput {
	return models.RegisterBankInput{
		Name:     r.Name,
		Hospital: r.Hospital,
		Email:    r.Email,
		Password: r.Password,
		Phone:    r.Phone,
		Location: r.Location.toModel(),
	}
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`

	parsedRole id.Role
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
}

func (r *LoginRequest) Validate() error {
	if r.Email == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "email and password are required")
	}
	role, err := id.ParseRole(r.Role)
	if err != nil {
		return err
	}
	r.parsedRole = role
	return nil
}

// UpdateUserRequest is the body of PUT /user. Absent fields are left unchanged;
// email and password cannot be changed here.
type UpdateUserRequest struct {
	Name       *string          `json:"name"`
	Phone      *string          `json:"phone"`
	BloodGroup *string          `json:"blood_group"`
	Location   *LocationRequest `json:"location"`

	update models.UserUpdate
}

func (r *UpdateUserRequest) Normalize() {
	trimPtr(r.Name)
	trimPtr(r.Phone)
	if r.BloodGroup != nil {
		v := strings.ToUpper(strings.TrimSpace(*r.BloodGroup))
		r.BloodGroup = &v
	}
	if r.Location != nil {
		r.Location.normalize()
	}
}

func (r *UpdateUserRequest) Validate() error {
	if r.Name != nil && (*r.Name == "" || len(*r.Name) > maxFieldLength) {
		return dErrors.New(dErrors.CodeInvalidInput, "name must be non-empty and at most 200 characters")
	}
	r.update = models.UserUpdate{Name: r.Name, Phone: r.Phone}
	if r.BloodGroup != nil {
		bg, err := id.ParseBloodGroup(*r.BloodGroup)
		if err != nil {
			return err
		}
		r.update.BloodGroup = &bg
	}
	if r.Location != nil {
		loc := r.Location.toModel()
		r.update.Location = &loc
	}
	return nil
}

// UpdateBankRequest is the body of PUT /bank. Stock and record lists are not
// reachable through it.
type UpdateBankRequest struct {
	Name     *string          `json:"name"`
	Hospital *string          `json:"hospital"`
	Phone    *string          `json:"phone"`
	Location *LocationRequest `json:"location"`

	update models.BankUpdate
}

func (r *UpdateBankRequest) Normalize() {
	trimPtr(r.Name)
	trimPtr(r.Hospital)
	trimPtr(r.Phone)
	if r.Location != nil {
		r.Location.normalize()
	}
}

func (r *UpdateBankRequest) Validate() error {
	if r.Name != nil && (*r.Name == "" || len(*r.Name) > maxFieldLength) {
		return dErrors.New(dErrors.CodeInvalidInput, "name must be non-empty and at most 200 characters")
	}
	if r.Location != nil && (r.Location.State == "" || r.Location.District == "") {
		return dErrors.New(dErrors.CodeInvalidInput, "location.state and location.district are required")
	}
	r.update = models.BankUpdate{Name: r.Name, Hospital: r.Hospital, Phone: r.Phone}
	if r.Location != nil {
		loc := r.Location.toModel()
		r.update.Location = &loc
	}
	return nil
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
