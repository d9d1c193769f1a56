package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"familytree_go/internal/model"
	"familytree_go/internal/repository"
)

// AuthConfig 认证配置
type AuthConfig struct {
	SecretKey     string        // JWT密钥
	TokenDuration time.Duration // Token有效期
}

// Claims JWT声明，ID(jti)为会话ID
type Claims struct {
	ModeratorID string `json:"moderator_id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// LoginInput 登录载荷
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateModeratorInput 创建版主载荷
type CreateModeratorInput struct {
	Email     string `json:"email" validate:"required,email,max=100"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"max=50"`
	LastName  string `json:"last_name" validate:"max=50"`
	Gender    string `json:"gender" validate:"omitempty,gender"`
	Role      string `json:"role" validate:"omitempty,oneof=moderator super_admin"`
}

// ChangePasswordInput 修改密码载荷
type ChangePasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// LoginResult 登录结果
type LoginResult struct {
	AccessToken string           `json:"access_token"`
	ExpiresAt   time.Time        `json:"expires_at"`
	Moderator   *model.Moderator `json:"moderator"`
}

// Auth 认证服务
type Auth struct {
	config    *AuthConfig
	db        *repository.DB
	validator *Validator
	logger    *Logger
	now       func() time.Time
}

// NewAuth 创建认证服务实例
func NewAuth(config *AuthConfig, db *repository.DB, validator *Validator, logger *Logger) *Auth {
	return &Auth{
		config:    config,
		db:        db,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// GenerateToken 为会话生成JWT令牌
func (a *Auth) GenerateToken(moderator *model.Moderator, session *model.UserSession) (string, error) {
	now := a.now()
	claims := Claims{
		ModeratorID: moderator.ID,
		Email:       moderator.Email,
		Role:        moderator.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   moderator.ID,
			ExpiresAt: jwt.NewNumericDate(session.TokenExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.config.SecretKey))
}

// ValidateToken 验证JWT令牌及其会话
func (a *Auth) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(a.config.SecretKey), nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, NewError(ErrAuthentication, "invalid token", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, NewError(ErrAuthentication, "invalid token", nil)
	}

	var session model.UserSession
	res := a.db.WithContext(ctx).Where("id = ? AND moderator_id = ?", claims.ID, claims.ModeratorID).Limit(1).Find(&session)
	if res.Error != nil {
		return nil, dbError("find session", res.Error)
	}
	if res.RowsAffected == 0 || session.Expired(a.now()) {
		return nil, NewError(ErrAuthentication, "session expired", nil)
	}
	return claims, nil
}

// Login 版主登录，创建会话并签发令牌
func (a *Auth) Login(ctx context.Context, in *LoginInput) (*LoginResult, error) {
	if err := a.validator.Struct(in); err != nil {
		return nil, err
	}

	var moderator model.Moderator
	res := a.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(in.Email))).Limit(1).Find(&moderator)
	if res.Error != nil {
		return nil, dbError("find moderator", res.Error)
	}
	if res.RowsAffected == 0 || !moderator.CheckPassword(in.Password) {
		return nil, NewError(ErrAuthentication, "invalid email or password", nil)
	}

	session := &model.UserSession{
		ModeratorID:    moderator.ID,
		TokenExpiresAt: a.now().Add(a.config.TokenDuration),
	}
	if err := a.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, dbError("create session", err)
	}

	token, err := a.GenerateToken(&moderator, session)
	if err != nil {
		return nil, NewError(ErrInternal, "failed to sign token", err)
	}

	a.logger.Info("moderator %s logged in", moderator.ID)
	return &LoginResult{AccessToken: token, ExpiresAt: session.TokenExpiresAt, Moderator: &moderator}, nil
}

// Logout 删除会话，令牌随即失效
func (a *Auth) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil {
		return NewError(ErrAuthentication, "authentication required", ErrNoClaims)
	}
	err := a.db.WithContext(ctx).Where("id = ?", claims.ID).Delete(&model.UserSession{}).Error
	return dbError("delete session", err)
}

// GetModerator 获取版主
func (a *Auth) GetModerator(ctx context.Context, id string) (*model.Moderator, error) {
	var moderator model.Moderator
	res := a.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&moderator)
	if res.Error != nil {
		return nil, dbError("find moderator", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, notFoundError("moderator", id)
	}
	return &moderator, nil
}

// CreateModerator 创建版主
func (a *Auth) CreateModerator(ctx context.Context, in *CreateModeratorInput) (*model.Moderator, error) {
	if err := a.validator.Struct(in); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	var count int64
	if err := a.db.WithContext(ctx).Model(&model.Moderator{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, dbError("count moderators", err)
	}
	if count > 0 {
		return nil, conflictError("email already exists")
	}

	role := in.Role
	if role == "" {
		role = model.RoleModerator
	}
	moderator := &model.Moderator{
		Email:     email,
		FirstName: strings.ToLower(strings.TrimSpace(in.FirstName)),
		LastName:  strings.ToLower(strings.TrimSpace(in.LastName)),
		Gender:    model.Gender(in.Gender),
		Password:  in.Password,
		Role:      role,
	}
	if err := a.db.WithContext(ctx).Create(moderator).Error; err != nil {
		return nil, dbError("create moderator", err)
	}
	return moderator, nil
}

// ChangePassword 修改密码，其他会话全部失效
func (a *Auth) ChangePassword(ctx context.Context, claims *Claims, in *ChangePasswordInput) error {
	if claims == nil {
		return NewError(ErrAuthentication, "authentication required", ErrNoClaims)
	}
	if err := a.validator.Struct(in); err != nil {
		return err
	}

	moderator, err := a.GetModerator(ctx, claims.ModeratorID)
	if err != nil {
		return err
	}
	if !moderator.CheckPassword(in.OldPassword) {
		return NewError(ErrAuthentication, "invalid old password", nil)
	}

	moderator.Password = in.NewPassword
	if err := a.db.WithContext(ctx).Save(moderator).Error; err != nil {
		return dbError("update password", err)
	}
	err = a.db.WithContext(ctx).
		Where("moderator_id = ? AND id <> ?", moderator.ID, claims.ID).
		Delete(&model.UserSession{}).Error
	return dbError("revoke sessions", err)
}

// EnsureSuperAdmin 不存在时创建超级管理员
func (a *Auth) EnsureSuperAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := a.CreateModerator(ctx, &CreateModeratorInput{
		Email:    email,
		Password: password,
		Role:     model.RoleSuperAdmin,
	})
	if IsCode(err, ErrConflict) {
		return nil
	}
	if err == nil {
		a.logger.Info("super admin %s created", email)
	}
	return err
}

// PurgeExpiredSessions 清理过期会话
func (a *Auth) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	res := a.db.WithContext(ctx).Where("token_expires_at <= ?", a.now()).Delete(&model.UserSession{})
	if res.Error != nil {
		return 0, dbError("purge sessions", res.Error)
	}
	return res.RowsAffected, nil
}

// HasRole 检查声明是否具有指定角色
func (a *Auth) HasRole(claims *Claims, role string) bool {
	return claims != nil && claims.Role == role
}

// ErrNoClaims 上下文中缺少认证信息
var ErrNoClaims = errors.New("claims not found in context")
