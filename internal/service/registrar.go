package service

import (
	"fmt"

	"gorm.io/gorm"

	"familytree_go/internal/model"
)

// memberRef 已校验的成员引用：新成员或已有成员ID
type memberRef struct {
	id    string
	fresh *model.Member
}

type otherSpouseRef struct {
	member           memberRef
	relationshipType model.RelationshipType
}

type childRef struct {
	member      memberRef
	childType   model.ChildType
	motherID    string
	motherIndex *int
}

// relationRequest 校验通过、尚未写入的关系请求
type relationRequest struct {
	spouse   *memberRef
	others   []otherSpouseRef
	children []childRef
}

func (r *relationRequest) empty() bool {
	return r.spouse == nil && len(r.others) == 0 && len(r.children) == 0
}

// prepareRelations 校验全部关系载荷，不访问数据库
func (v *Validator) prepareRelations(in *RelationsInput) (*relationRequest, error) {
	req := &relationRequest{}

	if in.Spouse != nil {
		ref, err := v.memberRef(in.Spouse, "spouse")
		if err != nil {
			return nil, err
		}
		req.spouse = &ref
	}

	for i := range in.OtherSpouses {
		o := &in.OtherSpouses[i]
		name := fmt.Sprintf("other_spouses[%d]", i)
		ref, err := v.memberRef(&o.MemberInput, name)
		if err != nil {
			return nil, err
		}
		if err := v.Var(o.RelationshipType, name+".relationship_type", "required,relationship_type"); err != nil {
			return nil, err
		}
		req.others = append(req.others, otherSpouseRef{
			member:           ref,
			relationshipType: model.RelationshipType(o.RelationshipType),
		})
	}

	for i := range in.Children {
		c := &in.Children[i]
		name := fmt.Sprintf("children[%d]", i)
		ref, err := v.memberRef(&c.MemberInput, name)
		if err != nil {
			return nil, err
		}
		if err := v.Var(c.ChildType, name+".child_type", "required,child_type"); err != nil {
			return nil, err
		}
		if c.MotherIndex != nil {
			if c.MotherID != "" {
				return nil, validationError("%s: mother_id and mother_index are mutually exclusive", name)
			}
			if *c.MotherIndex < 0 || *c.MotherIndex >= len(in.OtherSpouses) {
				return nil, validationError("%s: mother_index %d out of range", name, *c.MotherIndex)
			}
		}
		req.children = append(req.children, childRef{
			member:      ref,
			childType:   model.ChildType(c.ChildType),
			motherID:    c.MotherID,
			motherIndex: c.MotherIndex,
		})
	}

	return req, nil
}

func (v *Validator) memberRef(in *MemberInput, name string) (memberRef, error) {
	if in.IsReference() {
		return memberRef{id: in.ID}, nil
	}
	m, err := v.toMember(in)
	if err != nil {
		if appErr, ok := err.(*AppError); ok {
			appErr.Message = name + ": " + appErr.Message
		}
		return memberRef{}, err
	}
	return memberRef{fresh: m}, nil
}

// registrar 在同一事务内创建或更新配偶、非主配偶与子女关系
type registrar struct {
	tx *gorm.DB
}

func newRegistrar(tx *gorm.DB) *registrar {
	return &registrar{tx: tx}
}

// register 登记主成员的配偶、非主配偶与子女
func (r *registrar) register(primary *model.Member, req *relationRequest) (*Registration, error) {
	reg := &Registration{Member: NewMemberView(primary)}
	if req.empty() {
		return reg, nil
	}

	slot := SlotFor(primary.Gender)
	pairing, err := r.findPairing(primary.ID, slot)
	if err != nil {
		return nil, err
	}

	if req.spouse != nil {
		partner, err := r.resolve(*req.spouse)
		if err != nil {
			return nil, err
		}
		if partner.ID == primary.ID {
			return nil, validationError("a member cannot be their own spouse")
		}
		if SlotFor(partner.Gender) == slot {
			return nil, validationError("spouse must have the opposite gender")
		}
		if pairing, err = r.pair(primary, slot, partner, pairing); err != nil {
			return nil, err
		}
	}

	if pairing == nil {
		pairing = &model.Spouse{}
		setSlotMember(pairing, slot, primary.ID)
		if err := r.tx.Create(pairing).Error; err != nil {
			return nil, uniqueConflict(err, "create spouse", "spouse record already exists")
		}
	}
	reg.Pairing = pairing

	otherIDs := make([]string, len(req.others))
	for i, o := range req.others {
		edge, err := r.addOtherSpouse(pairing, o)
		if err != nil {
			return nil, err
		}
		otherIDs[i] = edge.MemberID
		reg.OtherSpouses = append(reg.OtherSpouses, *edge)
	}

	for _, c := range req.children {
		motherID := c.motherID
		if c.motherIndex != nil {
			motherID = otherIDs[*c.motherIndex]
		}
		edge, err := r.addChild(pairing, c, motherID)
		if err != nil {
			return nil, err
		}
		reg.Children = append(reg.Children, *edge)
	}

	return reg, nil
}

// pair 将伴侣放入主成员的配偶记录，占用的角色不会被覆盖
func (r *registrar) pair(primary *model.Member, slot Slot, partner *model.Member, pairing *model.Spouse) (*model.Spouse, error) {
	partnerSlot := slot.Opposite()

	if pairing != nil {
		if current := slotMember(pairing, partnerSlot); current != nil {
			if *current == partner.ID {
				return pairing, nil
			}
			return nil, conflictError("already have " + partnerSlot.String())
		}
		taken, err := r.findPairing(partner.ID, partnerSlot)
		if err != nil {
			return nil, err
		}
		if taken != nil {
			if slotMember(taken, slot) != nil {
				return nil, conflictError("already have " + slot.String())
			}
			if err := r.merge(pairing, taken, primary.ID, partner.ID); err != nil {
				return nil, err
			}
		}
		setSlotMember(pairing, partnerSlot, partner.ID)
		if err := r.tx.Model(pairing).Update(partnerSlot.Column(), partner.ID).Error; err != nil {
			return nil, uniqueConflict(err, "update spouse", "already have "+partnerSlot.String())
		}
		return pairing, nil
	}

	// 伴侣已有单方记录时加入该记录
	existing, err := r.findPairing(partner.ID, partnerSlot)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if slotMember(existing, slot) != nil {
			return nil, conflictError("already have " + slot.String())
		}
		setSlotMember(existing, slot, primary.ID)
		if err := r.tx.Model(existing).Update(slot.Column(), primary.ID).Error; err != nil {
			return nil, uniqueConflict(err, "update spouse", "already have "+slot.String())
		}
		return existing, nil
	}

	created := &model.Spouse{}
	setSlotMember(created, slot, primary.ID)
	setSlotMember(created, partnerSlot, partner.ID)
	if err := r.tx.Create(created).Error; err != nil {
		return nil, uniqueConflict(err, "create spouse", "already have "+partnerSlot.String())
	}
	return created, nil
}

// merge 将伴侣的单方配偶记录并入主成员的记录。
// 双方互为非主配偶的关系由主配偶关系取代，相应的生母引用一并清空
func (r *registrar) merge(pairing, from *model.Spouse, primaryID, partnerID string) error {
	rows := []string{pairing.ID, from.ID}
	couple := []string{primaryID, partnerID}

	err := r.tx.Model(&model.Child{}).
		Where("spouse_id IN ? AND mother_id IN ?", rows, couple).
		Update("mother_id", nil).Error
	if err != nil {
		return dbError("merge children", err)
	}
	err = r.tx.Where("spouse_id IN ? AND member_id IN ?", rows, couple).
		Delete(&model.OtherSpouse{}).Error
	if err != nil {
		return dbError("merge other spouses", err)
	}

	if err := r.tx.Model(&model.Child{}).Where("spouse_id = ?", from.ID).Update("spouse_id", pairing.ID).Error; err != nil {
		return dbError("merge children", err)
	}
	if err := r.tx.Model(&model.OtherSpouse{}).Where("spouse_id = ?", from.ID).Update("spouse_id", pairing.ID).Error; err != nil {
		return dbError("merge other spouses", err)
	}
	if err := r.tx.Where("id = ?", from.ID).Delete(&model.Spouse{}).Error; err != nil {
		return dbError("merge spouse", err)
	}
	return nil
}

func (r *registrar) addOtherSpouse(pairing *model.Spouse, o otherSpouseRef) (*model.OtherSpouse, error) {
	m, err := r.resolve(o.member)
	if err != nil {
		return nil, err
	}
	if isPairingMember(pairing, m.ID) {
		return nil, validationError("member %s already belongs to this pairing", m.ID)
	}

	relatedSlot := SlotFor(m.Gender).Opposite()
	related := slotMember(pairing, relatedSlot)
	if related == nil {
		return nil, validationError("pairing has no %s for other spouse %s to relate to", relatedSlot, m.ID)
	}

	var edge model.OtherSpouse
	res := r.tx.Where("member_id = ? AND member_related_to_id = ?", m.ID, *related).Limit(1).Find(&edge)
	if res.Error != nil {
		return nil, dbError("find other spouse", res.Error)
	}
	if res.RowsAffected > 0 {
		edge.RelationshipType = o.relationshipType
		edge.SpouseID = pairing.ID
		if err := r.tx.Save(&edge).Error; err != nil {
			return nil, dbError("update other spouse", err)
		}
		return &edge, nil
	}

	edge = model.OtherSpouse{
		MemberID:          m.ID,
		MemberRelatedToID: *related,
		SpouseID:          pairing.ID,
		RelationshipType:  o.relationshipType,
	}
	if err := r.tx.Create(&edge).Error; err != nil {
		return nil, uniqueConflict(err, "create other spouse", "other spouse already registered")
	}
	return &edge, nil
}

func (r *registrar) addChild(pairing *model.Spouse, c childRef, motherID string) (*model.Child, error) {
	if motherID != "" && pairing.WifeID != nil && *pairing.WifeID == motherID {
		motherID = ""
	}
	if motherID != "" {
		if err := r.checkMother(pairing, motherID); err != nil {
			return nil, err
		}
	}

	child, err := r.resolve(c.member)
	if err != nil {
		return nil, err
	}
	if isPairingMember(pairing, child.ID) || child.ID == motherID {
		return nil, validationError("member %s cannot be a child of their own pairing", child.ID)
	}

	var mother *string
	if motherID != "" {
		mother = &motherID
	}

	var edge model.Child
	res := r.tx.Where("child_id = ?", child.ID).Limit(1).Find(&edge)
	if res.Error != nil {
		return nil, dbError("find child", res.Error)
	}
	if res.RowsAffected > 0 {
		if edge.SpouseID != pairing.ID {
			return nil, conflictError("already have parents")
		}
		edge.ChildType = c.childType
		edge.MotherID = mother
		if err := r.tx.Save(&edge).Error; err != nil {
			return nil, dbError("update child", err)
		}
		return &edge, nil
	}

	edge = model.Child{
		SpouseID:  pairing.ID,
		ChildID:   child.ID,
		MotherID:  mother,
		ChildType: c.childType,
	}
	if err := r.tx.Create(&edge).Error; err != nil {
		return nil, uniqueConflict(err, "create child", "already have parents")
	}
	return &edge, nil
}

// checkMother 生母必须是该配偶关系中的非主配偶女性
func (r *registrar) checkMother(pairing *model.Spouse, motherID string) error {
	var count int64
	err := r.tx.Model(&model.OtherSpouse{}).
		Where("member_id = ? AND spouse_id = ?", motherID, pairing.ID).
		Count(&count).Error
	if err != nil {
		return dbError("find mother", err)
	}
	if count == 0 {
		return validationError("mother %s is not an other spouse of this pairing", motherID)
	}

	mother, err := r.load(motherID)
	if err != nil {
		return err
	}
	if mother.Gender != model.GenderFemale {
		return validationError("mother %s must be female", motherID)
	}
	return nil
}

// findPairing 查询成员在指定角色上的配偶记录，不存在时返回nil
func (r *registrar) findPairing(memberID string, slot Slot) (*model.Spouse, error) {
	var pairing model.Spouse
	res := r.tx.Where(slot.Column()+" = ?", memberID).Limit(1).Find(&pairing)
	if res.Error != nil {
		return nil, dbError("find spouse", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &pairing, nil
}

// resolve 创建新成员或加载已有成员
func (r *registrar) resolve(ref memberRef) (*model.Member, error) {
	if ref.fresh != nil {
		if ref.fresh.ID == "" {
			if err := r.tx.Create(ref.fresh).Error; err != nil {
				return nil, dbError("create member", err)
			}
		}
		return ref.fresh, nil
	}
	return r.load(ref.id)
}

func (r *registrar) load(id string) (*model.Member, error) {
	var m model.Member
	res := r.tx.Where("id = ?", id).Limit(1).Find(&m)
	if res.Error != nil {
		return nil, dbError("find member", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, notFoundError("member", id)
	}
	return &m, nil
}

func isPairingMember(pairing *model.Spouse, id string) bool {
	return (pairing.HusbandID != nil && *pairing.HusbandID == id) ||
		(pairing.WifeID != nil && *pairing.WifeID == id)
}
