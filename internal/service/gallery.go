package service

import (
	"context"
	"mime/multipart"
	"strings"

	"familytree_go/internal/model"
	"familytree_go/internal/repository"
)

// GalleryInput 相册元数据
type GalleryInput struct {
	Title       *string `json:"title" form:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" form:"description" validate:"omitempty,max=500"`
	EventYear   *string `json:"event_year" form:"event_year" validate:"omitempty,max=50"`
}

// GalleryService 相册服务
type GalleryService struct {
	db        *repository.DB
	uploads   *UploadService
	validator *Validator
	logger    *Logger
}

// NewGalleryService 创建相册服务实例
func NewGalleryService(db *repository.DB, uploads *UploadService, validator *Validator, logger *Logger) *GalleryService {
	return &GalleryService{db: db, uploads: uploads, validator: validator, logger: logger}
}

// Create 上传图片并创建相册记录
func (s *GalleryService) Create(ctx context.Context, file *multipart.FileHeader, in *GalleryInput) (*model.Gallery, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	url, err := s.uploads.UploadImage(file)
	if err != nil {
		return nil, err
	}

	item := &model.Gallery{Image: url}
	applyGallery(item, in)
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		s.uploads.DeleteFile(url)
		return nil, dbError("create gallery", err)
	}
	return item, nil
}

// List 分页列出相册，最新在前
func (s *GalleryService) List(ctx context.Context, page, perPage int) (*Page[model.Gallery], error) {
	page, perPage = NormalizePage(page, perPage)

	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Gallery{}).Count(&total).Error; err != nil {
		return nil, dbError("count gallery", err)
	}
	var items []model.Gallery
	err := s.db.WithContext(ctx).Order("created_at DESC").
		Scopes(repository.Paginate(page, perPage)).Find(&items).Error
	if err != nil {
		return nil, dbError("list gallery", err)
	}
	return NewPage(items, total, page, perPage), nil
}

// Get 获取相册记录
func (s *GalleryService) Get(ctx context.Context, id string) (*model.Gallery, error) {
	var item model.Gallery
	res := s.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&item)
	if res.Error != nil {
		return nil, dbError("find gallery", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, notFoundError("gallery item", id)
	}
	return &item, nil
}

// Update 更新相册元数据
func (s *GalleryService) Update(ctx context.Context, id string, in *GalleryInput) (*model.Gallery, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyGallery(item, in)
	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, dbError("update gallery", err)
	}
	return item, nil
}

// Delete 删除相册记录及其文件
func (s *GalleryService) Delete(ctx context.Context, id string) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(item).Error; err != nil {
		return dbError("delete gallery", err)
	}
	if s.uploads.Owns(item.Image) {
		if err := s.uploads.DeleteFile(item.Image); err != nil {
			s.logger.Warn("failed to remove gallery image %s: %v", item.Image, err)
		}
	}
	return nil
}

func applyGallery(item *model.Gallery, in *GalleryInput) {
	if in.Title != nil {
		item.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		item.Description = strings.TrimSpace(*in.Description)
	}
	if in.EventYear != nil {
		item.EventYear = strings.TrimSpace(*in.EventYear)
	}
}
