package model

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 版主角色
const (
	RoleModerator  = "moderator"
	RoleSuperAdmin = "super_admin"
)

// Moderator 版主模型
type Moderator struct {
	BaseModel
	Email     string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	FirstName string `gorm:"size:50" json:"first_name"`
	LastName  string `gorm:"size:50" json:"last_name"`
	Gender    Gender `gorm:"size:10" json:"gender"`
	Password  string `gorm:"size:255;not null" json:"-"`
	Role      string `gorm:"size:50;not null;default:'moderator'" json:"role"`
}

// BeforeSave 保存前加密密码
func (m *Moderator) BeforeSave(tx *gorm.DB) error {
	m.Email = strings.ToLower(strings.TrimSpace(m.Email))
	if m.Password != "" && !isBcryptHash(m.Password) {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(m.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		m.Password = string(hashedPassword)
	}
	return nil
}

// CheckPassword 检查密码是否正确
func (m *Moderator) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(m.Password), []byte(password))
	return err == nil
}

// IsSuperAdmin 是否为超级管理员
func (m *Moderator) IsSuperAdmin() bool {
	return m.Role == RoleSuperAdmin
}

// TableName 指定表名
func (Moderator) TableName() string {
	return "moderators"
}

func isBcryptHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

// UserSession 登录会话，令牌仅在会话存在且未过期时有效
type UserSession struct {
	BaseModel
	ModeratorID    string    `gorm:"size:36;not null;index" json:"moderator_id"`
	TokenExpiresAt time.Time `gorm:"not null" json:"token_expires_at"`
}

// TableName 指定表名
func (UserSession) TableName() string {
	return "user_sessions"
}

// Expired 会话是否已过期
func (s *UserSession) Expired(now time.Time) bool {
	return !now.Before(s.TokenExpiresAt)
}
