package service

import (
	"context"
	"mime/multipart"
	"strings"
	"time"

	"gorm.io/gorm"

	"familytree_go/internal/model"
	"familytree_go/internal/repository"
)

const chainVersionKey = "family:chain:version"

// FamilyService 家族关系图服务
type FamilyService struct {
	db        *repository.DB
	validator *Validator
	logger    *Logger
	cache     Cache
	cacheTTL  time.Duration
	uploads   *UploadService
	metrics   *MetricsService
}

// NewFamilyService 创建家族服务实例
func NewFamilyService(db *repository.DB, validator *Validator, logger *Logger) *FamilyService {
	return &FamilyService{
		db:        db,
		validator: validator,
		logger:    logger,
	}
}

// WithCache 启用家族链缓存
func (s *FamilyService) WithCache(cache Cache, ttl time.Duration) *FamilyService {
	s.cache = cache
	s.cacheTTL = ttl
	return s
}

// WithUploads 设置上传服务，用于成员头像
func (s *FamilyService) WithUploads(uploads *UploadService) *FamilyService {
	s.uploads = uploads
	return s
}

// WithMetrics 设置指标服务
func (s *FamilyService) WithMetrics(metrics *MetricsService) *FamilyService {
	s.metrics = metrics
	return s
}

// RegisterMemberWithRelationships 创建成员并登记其配偶、非主配偶与子女
func (s *FamilyService) RegisterMemberWithRelationships(ctx context.Context, in *RegisterMemberInput) (reg *Registration, err error) {
	defer func() { s.metrics.Observe("register", err) }()

	if in.IsReference() {
		return nil, validationError("id must not be set when registering a new member")
	}
	member, err := s.validator.toMember(&in.MemberInput)
	if err != nil {
		return nil, err
	}
	req, err := s.validator.prepareRelations(&in.RelationsInput)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		tx = tx.WithContext(ctx)
		if err := tx.Create(member).Error; err != nil {
			return dbError("create member", err)
		}
		reg, err = newRegistrar(tx).register(member, req)
		return err
	})
	if err != nil {
		s.logger.Warn("register member failed: %v", err)
		return nil, err
	}

	s.invalidate(ctx)
	s.logger.Info("member %s registered", member.ID)
	return reg, nil
}

// EditMember 部分更新成员，并可追加关系
func (s *FamilyService) EditMember(ctx context.Context, id string, in *EditMemberInput) (view *MemberView, err error) {
	defer func() { s.metrics.Observe("edit", err) }()

	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	req, err := s.validator.prepareRelations(&in.RelationsInput)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		tx = tx.WithContext(ctx)
		r := newRegistrar(tx)
		member, err := r.load(id)
		if err != nil {
			return err
		}

		genderChanged := in.Gender != nil && model.Gender(*in.Gender) != member.Gender
		if genderChanged {
			linked, err := hasPartnerEdges(tx, id)
			if err != nil {
				return err
			}
			if linked {
				return validationError("gender cannot change while the member has spouses")
			}
		}

		applyEdit(member, in)
		if err := checkLifeStatus(member); err != nil {
			return err
		}
		if err := tx.Save(member).Error; err != nil {
			return dbError("update member", err)
		}

		if _, err := r.register(member, req); err != nil {
			return err
		}
		view = NewMemberView(member)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return view, nil
}

// hasPartnerEdges 成员是否占用配偶角色或存在非主配偶关系
func hasPartnerEdges(tx *gorm.DB, id string) (bool, error) {
	var count int64
	if err := tx.Model(&model.Spouse{}).Where("husband_id = ? OR wife_id = ?", id, id).Count(&count).Error; err != nil {
		return false, dbError("count spouses", err)
	}
	if count > 0 {
		return true, nil
	}
	if err := tx.Model(&model.OtherSpouse{}).Where("member_id = ? OR member_related_to_id = ?", id, id).Count(&count).Error; err != nil {
		return false, dbError("count other spouses", err)
	}
	return count > 0, nil
}

// GetMember 获取单个成员
func (s *FamilyService) GetMember(ctx context.Context, id string) (*MemberView, error) {
	m, err := newRegistrar(s.db.WithContext(ctx)).load(id)
	if err != nil {
		return nil, err
	}
	return NewMemberView(m), nil
}

// ListMembers 分页浏览成员目录，按姓名排序
func (s *FamilyService) ListMembers(ctx context.Context, page, perPage int, search string) (*Page[MemberView], error) {
	page, perPage = NormalizePage(page, perPage)

	filter := func(db *gorm.DB) *gorm.DB { return db }
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		filter = func(db *gorm.DB) *gorm.DB {
			return db.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(other_name) LIKE ?", like, like, like)
		}
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Member{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, dbError("count members", err)
	}

	var members []model.Member
	err := s.db.WithContext(ctx).Scopes(filter, repository.Paginate(page, perPage)).
		Order("last_name, first_name").Find(&members).Error
	if err != nil {
		return nil, dbError("list members", err)
	}

	views := make([]MemberView, 0, len(members))
	for i := range members {
		views = append(views, *NewMemberView(&members[i]))
	}
	return NewPage(views, total, page, perPage), nil
}

// SetMemberImage 上传并设置成员头像，旧文件尽力删除
func (s *FamilyService) SetMemberImage(ctx context.Context, id string, file *multipart.FileHeader) (*MemberView, error) {
	if s.uploads == nil {
		return nil, NewError(ErrInternal, "uploads are not configured", nil)
	}
	member, err := newRegistrar(s.db.WithContext(ctx)).load(id)
	if err != nil {
		return nil, err
	}

	url, err := s.uploads.UploadImage(file)
	if err != nil {
		return nil, err
	}
	old := member.Image
	if err := s.db.WithContext(ctx).Model(member).Update("image", url).Error; err != nil {
		s.uploads.DeleteFile(url)
		return nil, dbError("update member image", err)
	}
	if old != "" && s.uploads.Owns(old) {
		if err := s.uploads.DeleteFile(old); err != nil {
			s.logger.Warn("failed to remove old image %s: %v", old, err)
		}
	}

	s.invalidate(ctx)
	member.Image = url
	return NewMemberView(member), nil
}

// invalidate 递增缓存版本，使所有家族链缓存失效
func (s *FamilyService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Incr(ctx, chainVersionKey); err != nil {
		s.logger.Warn("failed to invalidate family chain cache: %v", err)
	}
}
