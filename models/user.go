package models

import "time"

// Role is the platform role carried on every user row. Role checks happen
// once inside the workflow transition table, not per call site.
type Role string

const (
	RoleStudent      Role = "STUDENT"
	RoleWriter       Role = "WRITER"
	RoleTeacher      Role = "TEACHER"
	RoleStoryManager Role = "STORY_MANAGER"
	RoleBookManager  Role = "BOOK_MANAGER"
	RoleContentAdmin Role = "CONTENT_ADMIN"
	RoleAdmin        Role = "ADMIN"
)

// ParseRole maps a stored role string onto the enum. Unknown values come
// back as ok=false so callers can reject stale tokens.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleStudent, RoleWriter, RoleTeacher, RoleStoryManager,
		RoleBookManager, RoleContentAdmin, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// IsReviewer reports whether the role can read submissions under review
// and leave review comments.
func (r Role) IsReviewer() bool {
	switch r {
	case RoleStoryManager, RoleBookManager, RoleContentAdmin, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	UserID        int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	UserFname     string     `gorm:"column:user_fname" json:"user_fname"`
	UserLname     string     `gorm:"column:user_lname" json:"user_lname"`
	Email         string     `gorm:"column:email;unique" json:"email"`
	Password      string     `gorm:"column:password" json:"-"`
	Role          Role       `gorm:"column:role" json:"role"`
	Bio           *string    `gorm:"column:bio" json:"bio,omitempty"`
	AvatarFileID  *int       `gorm:"column:avatar_file_id" json:"avatar_file_id,omitempty"`
	CreateAt      *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt      *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt      *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
	PurgeAfter    *time.Time `gorm:"column:purge_after" json:"-"`
	DeletedReason *string    `gorm:"column:deleted_reason" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName returns "First Last" for notifications and exports.
func (u User) DisplayName() string {
	name := u.UserFname
	if u.UserLname != "" {
		if name != "" {
			name += " "
		}
		name += u.UserLname
	}
	if name == "" {
		return u.Email
	}
	return name
}
