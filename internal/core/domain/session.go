package domain

import "strings"

// UserSession is the record identifying the current user. It is the only
// entity the client persists.
type UserSession struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	DisplayName    string `json:"displayName"`
	Role           Role   `json:"role"`
	Bio            string `json:"bio,omitempty"`
	Location       string `json:"location,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Website        string `json:"website,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	// Token is the bearer credential issued by the backend, if any.
	Token string `json:"token,omitempty"`
}

// Clone returns an independent copy.
func (s *UserSession) Clone() *UserSession {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// Valid reports whether the record carries the fields every session needs.
func (s *UserSession) Valid() bool {
	return s != nil && strings.TrimSpace(s.ID) != "" && strings.TrimSpace(s.Email) != ""
}

// Initials returns up to two upper-case initials of the display name.
func (s *UserSession) Initials() string {
	fields := strings.Fields(s.DisplayName)
	if len(fields) == 0 {
		fields = []string{s.Email}
	}
	out := make([]rune, 0, 2)
	for i, f := range fields {
		if i > 1 || f == "" {
			break
		}
		out = append(out, []rune(strings.ToUpper(f))[0])
	}
	return string(out)
}

// ProfileComplete reports whether the optional profile fields have been filled.
func (s *UserSession) ProfileComplete() bool {
	return s.Bio != "" && s.Location != "" && s.Phone != ""
}

// ProfileUpdate carries a partial profile change. Nil fields are left as they
// are. Role is deliberately absent; see ChangeRole.
type ProfileUpdate struct {
	DisplayName    *string `json:"displayName,omitempty"`
	Email          *string `json:"email,omitempty" validate:"omitempty,email"`
	Bio            *string `json:"bio,omitempty" validate:"omitempty,max=1000"`
	Location       *string `json:"location,omitempty" validate:"omitempty,max=200"`
	Phone          *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Website        *string `json:"website,omitempty" validate:"omitempty,url"`
	ProfilePicture *string `json:"profilePicture,omitempty" validate:"omitempty,max=2048"`
}

// Empty reports whether the update changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u.DisplayName == nil && u.Email == nil && u.Bio == nil && u.Location == nil &&
		u.Phone == nil && u.Website == nil && u.ProfilePicture == nil
}

// Check rejects updates that would blank a required field.
func (u ProfileUpdate) Check() error {
	if u.DisplayName != nil && strings.TrimSpace(*u.DisplayName) == "" {
		return ErrEmptyField
	}
	if u.Email != nil && strings.TrimSpace(*u.Email) == "" {
		return ErrEmptyField
	}
	return nil
}

// ApplyTo returns a copy of s with the update merged in. Identity fields
// other than email, and the role, are never touched.
func (u ProfileUpdate) ApplyTo(s UserSession) UserSession {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&s.DisplayName, u.DisplayName)
	set(&s.Email, u.Email)
	set(&s.Bio, u.Bio)
	set(&s.Location, u.Location)
	set(&s.Phone, u.Phone)
	set(&s.Website, u.Website)
	set(&s.ProfilePicture, u.ProfilePicture)
	return s
}
