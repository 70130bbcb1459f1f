package user

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Attachment is one stored profile image.
type Attachment struct {
	Filename string `json:"filename"`
	FilePath string `json:"filePath"`
}

type User struct {
	ID           int          `json:"id"`
	FirstName    string       `json:"firstName"`
	LastName     string       `json:"lastName"`
	Email        string       `json:"email"`
	Password     string       `json:"password,omitempty"`
	Role         Role         `json:"role"`
	Address      string       `json:"address,omitempty"`
	PhoneNumber  string       `json:"phoneNumber,omitempty"`
	ProfileImage []Attachment `json:"profileImage"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Sanitize returns a copy safe to send to clients.
func (u User) Sanitize() User {
	u.Password = ""
	u.ProfileImage = cloneAttachments(u.ProfileImage)
	return u
}

func cloneAttachments(in []Attachment) []Attachment {
	out := make([]Attachment, len(in))
	copy(out, in)
	return out
}
