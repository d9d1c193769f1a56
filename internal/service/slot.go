package service

import "familytree_go/internal/model"

// Slot 主配偶关系中的角色
type Slot int

const (
	SlotHusband Slot = iota
	SlotWife
)

// String 返回角色名
func (s Slot) String() string {
	if s == SlotWife {
		return "wife"
	}
	return "husband"
}

// Opposite 返回相对的角色
func (s Slot) Opposite() Slot {
	if s == SlotWife {
		return SlotHusband
	}
	return SlotWife
}

// Column 角色对应的spouses表字段
func (s Slot) Column() string {
	if s == SlotWife {
		return "wife_id"
	}
	return "husband_id"
}

// SlotFor 根据性别决定角色：女性为妻子，男性为丈夫。新建与编辑路径共用
func SlotFor(gender model.Gender) Slot {
	if gender == model.GenderFemale {
		return SlotWife
	}
	return SlotHusband
}

// slotMember 读取配偶记录中某一角色的成员ID
func slotMember(s *model.Spouse, slot Slot) *string {
	if slot == SlotWife {
		return s.WifeID
	}
	return s.HusbandID
}

// setSlotMember 设置配偶记录中某一角色的成员ID
func setSlotMember(s *model.Spouse, slot Slot, id string) {
	if slot == SlotWife {
		s.WifeID = &id
		return
	}
	s.HusbandID = &id
}
