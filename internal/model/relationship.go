package model

// RelationshipType 非主配偶关系类型
type RelationshipType string

const (
	RelationshipWife          RelationshipType = "wife"
	RelationshipExWife        RelationshipType = "ex-wife"
	RelationshipHusband       RelationshipType = "husband"
	RelationshipExHusband     RelationshipType = "ex-husband"
	RelationshipPartner       RelationshipType = "partner"
	RelationshipExPartner     RelationshipType = "ex-partner"
	RelationshipSecondaryWife RelationshipType = "secondary wife"
	RelationshipMistress      RelationshipType = "mistress"
)

// RelationshipTypes 全部合法的关系类型
var RelationshipTypes = []RelationshipType{
	RelationshipWife, RelationshipExWife, RelationshipHusband, RelationshipExHusband,
	RelationshipPartner, RelationshipExPartner, RelationshipSecondaryWife, RelationshipMistress,
}

// ChildType 子女类型
type ChildType string

const (
	ChildSon             ChildType = "son"
	ChildDaughter        ChildType = "daughter"
	ChildStepson         ChildType = "stepson"
	ChildStepdaughter    ChildType = "stepdaughter"
	ChildAdoptedSon      ChildType = "adopted son"
	ChildAdoptedDaughter ChildType = "adopted daughter"
)

// ChildTypes 全部合法的子女类型
var ChildTypes = []ChildType{
	ChildSon, ChildDaughter, ChildStepson, ChildStepdaughter, ChildAdoptedSon, ChildAdoptedDaughter,
}

// Spouse 主配偶关系（丈夫/妻子），每个成员在每个角色上最多出现一次
type Spouse struct {
	BaseModel
	HusbandID *string `gorm:"size:36;uniqueIndex" json:"husband_id"`
	WifeID    *string `gorm:"size:36;uniqueIndex" json:"wife_id"`
}

// TableName 指定表名
func (Spouse) TableName() string {
	return "spouses"
}

// OtherSpouse 非主配偶关系。MemberID 为次要伴侣，MemberRelatedToID 为其关联的主配偶成员
type OtherSpouse struct {
	BaseModel
	MemberID          string           `gorm:"size:36;not null;uniqueIndex:idx_other_spouse_pair" json:"member_id"`
	MemberRelatedToID string           `gorm:"size:36;not null;uniqueIndex:idx_other_spouse_pair;index" json:"member_related_to"`
	SpouseID          string           `gorm:"size:36;not null;index" json:"spouse_id"`
	RelationshipType  RelationshipType `gorm:"size:30;not null" json:"relationship_type"`
}

// TableName 指定表名
func (OtherSpouse) TableName() string {
	return "other_spouses"
}

// Child 子女关系，MotherID 仅在生母为非主配偶时设置
type Child struct {
	BaseModel
	SpouseID  string    `gorm:"size:36;not null;index" json:"spouse_id"`
	ChildID   string    `gorm:"size:36;not null;uniqueIndex" json:"child_id"`
	MotherID  *string   `gorm:"size:36;index" json:"mother_id,omitempty"`
	ChildType ChildType `gorm:"size:30;not null" json:"child_type"`
}

// TableName 指定表名
func (Child) TableName() string {
	return "children"
}
