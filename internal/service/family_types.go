package service

import (
	"strings"
	"time"

	"familytree_go/internal/model"
)

// MemberInput 成员载荷。ID非空时引用已有成员，其余字段忽略
type MemberInput struct {
	ID          string `json:"id" validate:"omitempty,max=36"`
	FirstName   string `json:"first_name" validate:"required,max=100"`
	LastName    string `json:"last_name" validate:"required,max=100"`
	OtherName   string `json:"other_name" validate:"max=100"`
	Gender      string `json:"gender" validate:"required,gender"`
	DateOfBirth string `json:"dob" validate:"required,familydate"`
	Status      string `json:"status" validate:"omitempty,member_status"`
	DeceasedAt  string `json:"deceased_at" validate:"omitempty,familydate"`
	Occupation  string `json:"occupation" validate:"max=100"`
	BirthPlace  string `json:"birth_place" validate:"max=200"`
	BirthName   string `json:"birth_name" validate:"max=100"`
	Biography   string `json:"biography"`
	Image       string `json:"image" validate:"max=500"`
}

// IsReference 是否引用已有成员
func (in *MemberInput) IsReference() bool {
	return strings.TrimSpace(in.ID) != ""
}

// OtherSpouseInput 非主配偶载荷
type OtherSpouseInput struct {
	MemberInput
	RelationshipType string `json:"relationship_type"`
}

// ChildInput 子女载荷。MotherID或MotherIndex（指向同一请求的other_spouses）指定生母
type ChildInput struct {
	MemberInput
	ChildType   string `json:"child_type"`
	MotherID    string `json:"mother_id"`
	MotherIndex *int   `json:"mother_index"`
}

// RelationsInput 关系载荷，新建与编辑共用
type RelationsInput struct {
	Spouse       *MemberInput       `json:"spouse" validate:"-"`
	OtherSpouses []OtherSpouseInput `json:"other_spouses" validate:"-"`
	Children     []ChildInput       `json:"children" validate:"-"`
}

// Empty 是否不包含任何关系
func (r *RelationsInput) Empty() bool {
	return r.Spouse == nil && len(r.OtherSpouses) == 0 && len(r.Children) == 0
}

// RegisterMemberInput 新建成员及其关系
type RegisterMemberInput struct {
	MemberInput
	RelationsInput
}

// EditMemberInput 成员部分更新，nil字段保持不变
type EditMemberInput struct {
	FirstName   *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName    *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	OtherName   *string `json:"other_name" validate:"omitempty,max=100"`
	Gender      *string `json:"gender" validate:"omitempty,gender"`
	DateOfBirth *string `json:"dob" validate:"omitempty,familydate"`
	Status      *string `json:"status" validate:"omitempty,member_status"`
	DeceasedAt  *string `json:"deceased_at" validate:"omitempty,familydate"`
	Occupation  *string `json:"occupation" validate:"omitempty,max=100"`
	BirthPlace  *string `json:"birth_place" validate:"omitempty,max=200"`
	BirthName   *string `json:"birth_name" validate:"omitempty,max=100"`
	Biography   *string `json:"biography"`
	Image       *string `json:"image" validate:"omitempty,max=500"`
	RelationsInput
}

// MemberView 成员展示视图，日期为展示格式
type MemberView struct {
	ID          string       `json:"id"`
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	OtherName   string       `json:"other_name,omitempty"`
	FullName    string       `json:"full_name"`
	Gender      model.Gender `json:"gender"`
	DateOfBirth string       `json:"dob"`
	Status      model.Status `json:"status"`
	DeceasedAt  string       `json:"deceased_at,omitempty"`
	Occupation  string       `json:"occupation,omitempty"`
	BirthPlace  string       `json:"birth_place,omitempty"`
	BirthName   string       `json:"birth_name,omitempty"`
	Biography   string       `json:"biography,omitempty"`
	Image       string       `json:"image,omitempty"`
}

// NewMemberView 从模型生成视图
func NewMemberView(m *model.Member) *MemberView {
	if m == nil {
		return nil
	}
	v := &MemberView{
		ID:          m.ID,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		OtherName:   m.OtherName,
		FullName:    m.FullName(),
		Gender:      m.Gender,
		DateOfBirth: FormatDisplay(m.DateOfBirth),
		Status:      m.Status,
		Occupation:  m.Occupation,
		BirthPlace:  m.BirthPlace,
		BirthName:   m.BirthName,
		Biography:   m.Biography,
		Image:       m.Image,
	}
	if m.DeceasedAt != nil {
		v.DeceasedAt = FormatDisplay(*m.DeceasedAt)
	}
	return v
}

// ParentsView 父母视图
type ParentsView struct {
	Father *MemberView `json:"father"`
	Mother *MemberView `json:"mother"`
}

// OtherSpouseView 非主配偶视图
type OtherSpouseView struct {
	Member           *MemberView            `json:"member"`
	RelationshipType model.RelationshipType `json:"relationship_type"`
	RelatedTo        string                 `json:"member_related_to"`
}

// SpouseView 配偶视图
type SpouseView struct {
	ID               string                 `json:"id"`
	Husband          *MemberView            `json:"husband"`
	Wife             *MemberView            `json:"wife"`
	RelationshipType model.RelationshipType `json:"relationship_type,omitempty"`
	OtherSpouses     []OtherSpouseView      `json:"other_spouses,omitempty"`
}

// ChildView 子女视图
type ChildView struct {
	Member    *MemberView     `json:"member"`
	ChildType model.ChildType `json:"child_type"`
	MotherID  string          `json:"mother_id,omitempty"`
}

// FamilyChain 以成员为中心的上一代与下一代视图
type FamilyChain struct {
	Member   *MemberView  `json:"member"`
	Parents  *ParentsView `json:"parents"`
	Spouse   *SpouseView  `json:"spouse"`
	Children []ChildView  `json:"children"`
}

// Registration 关系登记结果
type Registration struct {
	Member       *MemberView         `json:"member"`
	Pairing      *model.Spouse       `json:"spouse,omitempty"`
	OtherSpouses []model.OtherSpouse `json:"other_spouses,omitempty"`
	Children     []model.Child       `json:"children,omitempty"`
}

// DeleteResult 级联删除结果
type DeleteResult struct {
	DeletedMembers []string `json:"deleted_members"`
	DeletedEdges   int      `json:"deleted_edges"`
}

// Page 分页结果
type Page[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Pages   int   `json:"pages"`
}

// NewPage 生成分页结果
func NewPage[T any](items []T, total int64, page, perPage int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if perPage > 0 {
		pages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return &Page[T]{Items: items, Total: total, Page: page, PerPage: perPage, Pages: pages}
}

// 分页默认值
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// NormalizePage 修正页码与每页条数
func NormalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// toMember 校验载荷并生成新成员记录
func (v *Validator) toMember(in *MemberInput) (*model.Member, error) {
	if err := v.Struct(in); err != nil {
		return nil, err
	}
	dob, _ := ParseDate(in.DateOfBirth)
	m := &model.Member{
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		OtherName:   strings.TrimSpace(in.OtherName),
		Gender:      model.Gender(in.Gender),
		DateOfBirth: dob,
		Status:      model.StatusAlive,
		Occupation:  in.Occupation,
		BirthPlace:  in.BirthPlace,
		BirthName:   in.BirthName,
		Biography:   in.Biography,
		Image:       in.Image,
	}
	if in.Status != "" {
		m.Status = model.Status(in.Status)
	}
	if in.DeceasedAt != "" {
		d, _ := ParseDate(in.DeceasedAt)
		m.DeceasedAt = &d
	}
	if err := checkLifeStatus(m); err != nil {
		return nil, err
	}
	return m, nil
}

// checkLifeStatus 死亡日期当且仅当状态为deceased时存在
func checkLifeStatus(m *model.Member) error {
	switch m.Status {
	case model.StatusDeceased:
		if m.DeceasedAt == nil {
			return validationError("deceased_at is required when status is deceased")
		}
		if m.DeceasedAt.Before(m.DateOfBirth) {
			return validationError("deceased_at must not be before dob")
		}
	case model.StatusAlive:
		if m.DeceasedAt != nil {
			return validationError("deceased_at must be empty when status is alive")
		}
	}
	return nil
}

// applyEdit 将部分更新合并到成员记录
func applyEdit(m *model.Member, in *EditMemberInput) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setString(&m.FirstName, in.FirstName)
	setString(&m.LastName, in.LastName)
	setString(&m.OtherName, in.OtherName)
	setString(&m.Occupation, in.Occupation)
	setString(&m.BirthPlace, in.BirthPlace)
	setString(&m.BirthName, in.BirthName)
	setString(&m.Biography, in.Biography)
	setString(&m.Image, in.Image)
	if in.Gender != nil {
		m.Gender = model.Gender(*in.Gender)
	}
	if in.DateOfBirth != nil {
		m.DateOfBirth, _ = ParseDate(*in.DateOfBirth)
	}
	if in.Status != nil {
		m.Status = model.Status(*in.Status)
		if m.Status == model.StatusAlive {
			m.DeceasedAt = nil
		}
	}
	if in.DeceasedAt != nil {
		var d time.Time
		d, _ = ParseDate(*in.DeceasedAt)
		m.DeceasedAt = &d
	}
}
