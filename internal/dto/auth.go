package dto

import (
	"encoding/json"

	"eduassess/internal/domain"
)

// RoleValue absorbs the backend's inconsistent role field, which is sometimes
// a scalar and sometimes a list. It always normalizes to a list on decode.
type RoleValue []string

func (r *RoleValue) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*r = RoleValue{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*r = RoleValue(many)
	return nil
}

// LoginRequest is the body for POST /auth/login
type LoginRequest struct {
	Email      string `json:"email"`
	Department string `json:"department"`
	Password   string `json:"password"`
}

// SignupRequest is the body for POST /auth/signup
type SignupRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Department string `json:"department,omitempty"`
	RollNo     string `json:"rollNo,omitempty"`
	Age        int    `json:"age,omitempty"`
}

// UserPayload is the user record as the backend serializes it
type UserPayload struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         RoleValue `json:"role"`
	Department   string    `json:"department,omitempty"`
	RollNo       string    `json:"rollNo,omitempty"`
	Class        string    `json:"class,omitempty"`
	Age          int       `json:"age,omitempty"`
	QuizAttempts int       `json:"quizAttempts"`
}

// LoginResponse is the body returned by POST /auth/login
type LoginResponse struct {
	User        *UserPayload `json:"user"`
	AccessToken string       `json:"access_token"`
}

// MeResponse is the body returned by GET /auth/me
type MeResponse struct {
	User *UserPayload `json:"user"`
}

// ToDomain converts the wire user into the domain model, folding the role
// field into a set at the boundary.
func (p *UserPayload) ToDomain() *domain.User {
	if p == nil {
		return nil
	}
	roles := make([]domain.Role, 0, len(p.Role))
	for _, r := range p.Role {
		roles = append(roles, domain.Role(r))
	}
	return &domain.User{
		ID:           p.ID,
		Name:         p.Name,
		Email:        p.Email,
		Roles:        domain.NewRoleSet(roles...),
		Department:   p.Department,
		RollNo:       p.RollNo,
		Class:        p.Class,
		Age:          p.Age,
		QuizAttempts: p.QuizAttempts,
	}
}

// UserPayloadFromDomain converts a domain user back to the wire shape. Used
// by the stub collaborator.
func UserPayloadFromDomain(u *domain.User) *UserPayload {
	if u == nil {
		return nil
	}
	roles := make(RoleValue, 0, len(u.Roles))
	for _, r := range u.Roles.Slice() {
		roles = append(roles, string(r))
	}
	return &UserPayload{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         roles,
		Department:   u.Department,
		RollNo:       u.RollNo,
		Class:        u.Class,
		Age:          u.Age,
		QuizAttempts: u.QuizAttempts,
	}
}
