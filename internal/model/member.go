package model

import (
	"time"
)

// Gender 性别
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Status 生存状态
type Status string

const (
	StatusAlive    Status = "alive"
	StatusDeceased Status = "deceased"
)

// Member 家族成员模型
type Member struct {
	BaseModel
	FirstName   string     `gorm:"size:100;not null;index" json:"first_name"`
	LastName    string     `gorm:"size:100;not null;index" json:"last_name"`
	OtherName   string     `gorm:"size:100" json:"other_name"`
	Gender      Gender     `gorm:"size:10;not null" json:"gender"`
	DateOfBirth time.Time  `gorm:"not null" json:"dob"`
	Status      Status     `gorm:"size:10;not null;default:'alive'" json:"status"`
	DeceasedAt  *time.Time `json:"deceased_at,omitempty"`
	Occupation  string     `gorm:"size:100" json:"occupation"`
	BirthPlace  string     `gorm:"size:200" json:"birth_place"`
	BirthName   string     `gorm:"size:100" json:"birth_name"`
	Biography   string     `gorm:"type:text" json:"biography"`
	Image       string     `gorm:"size:500" json:"image"`
}

// TableName 指定表名
func (Member) TableName() string {
	return "members"
}

// FullName 返回成员全名
func (m *Member) FullName() string {
	if m.OtherName != "" {
		return m.FirstName + " " + m.OtherName + " " + m.LastName
	}
	return m.FirstName + " " + m.LastName
}
