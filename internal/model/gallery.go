package model

// Gallery 相册照片模型
type Gallery struct {
	BaseModel
	Image       string `gorm:"size:500;not null" json:"image"`
	Title       string `gorm:"size:200" json:"title"`
	Description string `gorm:"size:500" json:"description"`
	EventYear   string `gorm:"size:50" json:"event_year"`
}

// TableName 指定表名
func (Gallery) TableName() string {
	return "gallery"
}

// LogoID 站点标识单例的固定主键
const LogoID = "site"

// Logo 站点标识与首页横幅配置（单例）
type Logo struct {
	BaseModel
	LogoImage    string `gorm:"size:500" json:"logo_image"`
	HeroImage    string `gorm:"size:500" json:"hero_image"`
	HeroTitle    string `gorm:"size:200" json:"hero_title"`
	HeroSubtitle string `gorm:"size:500" json:"hero_subtitle"`
}

// TableName 指定表名
func (Logo) TableName() string {
	return "logo"
}

// AllModels 需要自动迁移的全部模型
func AllModels() []interface{} {
	return []interface{}{
		&Member{},
		&Spouse{},
		&OtherSpouse{},
		&Child{},
		&Moderator{},
		&UserSession{},
		&Gallery{},
		&Logo{},
	}
}
