package service

import (
	"context"
	"mime/multipart"

	"gorm.io/gorm"

	"familytree_go/internal/model"
	"familytree_go/internal/repository"
)

// LogoInput 站点标识更新载荷
type LogoInput struct {
	HeroTitle    *string `form:"hero_title" validate:"omitempty,max=200"`
	HeroSubtitle *string `form:"hero_subtitle" validate:"omitempty,max=500"`
}

// LogoService 站点标识单例服务
type LogoService struct {
	db        *repository.DB
	uploads   *UploadService
	validator *Validator
	logger    *Logger
}

// NewLogoService 创建站点标识服务实例
func NewLogoService(db *repository.DB, uploads *UploadService, validator *Validator, logger *Logger) *LogoService {
	return &LogoService{db: db, uploads: uploads, validator: validator, logger: logger}
}

// Get 获取站点标识，未设置时返回空记录
func (s *LogoService) Get(ctx context.Context) (*model.Logo, error) {
	var logo model.Logo
	res := s.db.WithContext(ctx).Where("id = ?", model.LogoID).Limit(1).Find(&logo)
	if res.Error != nil {
		return nil, dbError("find logo", res.Error)
	}
	if res.RowsAffected == 0 {
		logo = model.Logo{BaseModel: model.BaseModel{ID: model.LogoID}}
	}
	return &logo, nil
}

// Update 更新站点标识，可同时上传标识图与横幅图
func (s *LogoService) Update(ctx context.Context, in *LogoInput, logoFile, heroFile *multipart.FileHeader) (*model.Logo, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	var uploaded, replaced []string
	upload := func(file *multipart.FileHeader, dst *string) error {
		if file == nil {
			return nil
		}
		url, err := s.uploads.UploadImage(file)
		if err != nil {
			return err
		}
		uploaded = append(uploaded, url)
		if *dst != "" {
			replaced = append(replaced, *dst)
		}
		*dst = url
		return nil
	}

	var logo *model.Logo
	err := s.db.Transaction(func(tx *gorm.DB) error {
		tx = tx.WithContext(ctx)
		logo = &model.Logo{}
		res := tx.Where("id = ?", model.LogoID).Limit(1).Find(logo)
		if res.Error != nil {
			return dbError("find logo", res.Error)
		}
		if res.RowsAffected == 0 {
			logo = &model.Logo{BaseModel: model.BaseModel{ID: model.LogoID}}
		}

		if in.HeroTitle != nil {
			logo.HeroTitle = *in.HeroTitle
		}
		if in.HeroSubtitle != nil {
			logo.HeroSubtitle = *in.HeroSubtitle
		}
		if err := upload(logoFile, &logo.LogoImage); err != nil {
			return err
		}
		if err := upload(heroFile, &logo.HeroImage); err != nil {
			return err
		}
		return dbError("save logo", tx.Save(logo).Error)
	})
	if err != nil {
		for _, url := range uploaded {
			s.uploads.DeleteFile(url)
		}
		return nil, err
	}

	for _, url := range replaced {
		if s.uploads.Owns(url) {
			if err := s.uploads.DeleteFile(url); err != nil {
				s.logger.Warn("failed to remove replaced logo image %s: %v", url, err)
			}
		}
	}
	return logo, nil
}
