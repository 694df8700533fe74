package models

import (
	"strings"
	"time"
)

// Member represents a registered site member.
type Member struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(32)"`
	Name      string    `json:"name" gorm:"type:varchar(100)"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)"`
	Password  string    `json:"password" gorm:"type:varchar(255)"` // bcrypt hash, or plaintext for records that predate hashing
	Phone     string    `json:"phone,omitempty" gorm:"type:varchar(20)"`
	CreatedAt time.Time `json:"createdAt"`
}

// HasHashedPassword reports whether the stored password is a bcrypt hash.
func (m *Member) HasHashedPassword() bool {
	return strings.HasPrefix(m.Password, "$2")
}

// Public strips the password from the member.
func (m *Member) Public() MemberResponse {
	return MemberResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		CreatedAt: m.CreatedAt,
	}
}

// Identity returns the member as a request identity without session data.
func (m *Member) Identity() *Identity {
	return &Identity{ID: m.ID, Name: m.Name, Email: m.Email}
}

// MemberResponse is the member shape returned over the API.
type MemberResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Identity is the authenticated caller attached to a request.
type Identity struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"-"`
}
