package domain

// Role identifies what a user is allowed to see and do.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// RoleSet is the normalized representation of a user's roles. The backend is
// inconsistent about whether role is a scalar or a list, so the DTO layer
// always folds it into a set before it reaches any call site.
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet from the given roles, dropping empty values.
func NewRoleSet(roles ...Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		if r == "" {
			continue
		}
		s[r] = struct{}{}
	}
	return s
}

// Has reports whether the set contains the given role.
func (s RoleSet) Has(role Role) bool {
	_, ok := s[role]
	return ok
}

// Intersects reports whether the two sets share at least one role.
func (s RoleSet) Intersects(other RoleSet) bool {
	for r := range other {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// Slice returns the roles as a slice, for display and serialization.
func (s RoleSet) Slice() []Role {
	out := make([]Role, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	return out
}

// User represents the authenticated platform user. Created by the remote auth
// service on signup, re-fetched on every startup while a stored token exists,
// cleared on logout or token invalidation.
type User struct {
	ID           string
	Name         string
	Email        string
	Roles        RoleSet
	Department   string
	RollNo       string
	Class        string
	Age          int
	QuizAttempts int
}

// MaxQuizAttempts is the lifetime cap on adaptive quiz attempts per user.
const MaxQuizAttempts = 3

// CanStartQuiz reports whether the user is still under the attempt cap.
func (u *User) CanStartQuiz() bool {
	return u.QuizAttempts < MaxQuizAttempts
}

// LearningLevel returns the derived level for the user's next quiz.
func (u *User) LearningLevel() LearningLevel {
	return LearningLevelForAttempts(u.QuizAttempts)
}
