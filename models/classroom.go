package models

import "time"

// Class is a teacher-owned classroom. JoinCode is the short code students
// enter to join; it is unique among active classes.
type Class struct {
	ClassID     int        `gorm:"primaryKey;column:class_id" json:"class_id"`
	ClassName   string     `gorm:"column:class_name" json:"class_name"`
	Description *string    `gorm:"column:description" json:"description,omitempty"`
	TeacherID   int        `gorm:"column:teacher_id" json:"teacher_id"`
	JoinCode    string     `gorm:"column:join_code;unique" json:"join_code"`
	IsActive    bool       `gorm:"column:is_active" json:"is_active"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`
	DeletedAt   *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`

	Teacher *User         `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	Members []ClassMember `gorm:"foreignKey:ClassID" json:"members,omitempty"`
}

func (Class) TableName() string {
	return "classes"
}

type ClassMember struct {
	MemberID int       `gorm:"primaryKey;column:member_id" json:"member_id"`
	ClassID  int       `gorm:"column:class_id" json:"class_id"`
	UserID   int       `gorm:"column:user_id" json:"user_id"`
	JoinedAt time.Time `gorm:"column:joined_at" json:"joined_at"`

	User  *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Class *Class `gorm:"foreignKey:ClassID" json:"class,omitempty"`
}

func (ClassMember) TableName() string {
	return "class_members"
}
