package service

import (
	"context"

	"gorm.io/gorm"

	"familytree_go/internal/model"
)

// DeleteMemberCascade 删除成员及沿配偶、非主配偶、子女关系可达的全部成员，单一事务
func (s *FamilyService) DeleteMemberCascade(ctx context.Context, id string) (result *DeleteResult, err error) {
	defer func() { s.metrics.Observe("delete", err) }()

	var c *cascade
	err = s.db.Transaction(func(tx *gorm.DB) error {
		c = newCascade(tx.WithContext(ctx))
		return c.deleteMember(id)
	})
	if err != nil {
		s.logger.Error("cascade delete of member %s rolled back: %v", id, err)
		return nil, dbError("delete member", err)
	}

	if len(c.deleted) > 0 {
		s.invalidate(ctx)
		s.metrics.cascadeDeleted(len(c.deleted))
		s.logger.Info("cascade delete of member %s removed %d members and %d edges", id, len(c.deleted), c.edges)
	}
	s.removeImages(c.images)

	return &DeleteResult{DeletedMembers: c.deleted, DeletedEdges: c.edges}, nil
}

// removeImages 提交后尽力删除已删除成员的头像文件
func (s *FamilyService) removeImages(images []string) {
	if s.uploads == nil {
		return
	}
	for _, url := range images {
		if !s.uploads.Owns(url) {
			continue
		}
		if err := s.uploads.DeleteFile(url); err != nil {
			s.logger.Warn("failed to remove image %s: %v", url, err)
		}
	}
}

// cascade 一次删除请求的状态，visited保证终止与幂等
type cascade struct {
	tx      *gorm.DB
	visited map[string]bool
	deleted []string
	images  []string
	edges   int
}

func newCascade(tx *gorm.DB) *cascade {
	return &cascade{
		tx:      tx,
		visited: make(map[string]bool),
		deleted: []string{},
	}
}

func (c *cascade) deleteMember(id string) error {
	if c.visited[id] {
		return nil
	}
	c.visited[id] = true

	// 同一请求的其他分支可能已删除该成员
	var m model.Member
	res := c.tx.Where("id = ?", id).Limit(1).Find(&m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}

	for _, slot := range []Slot{SlotHusband, SlotWife} {
		var pairings []model.Spouse
		if err := c.tx.Where(slot.Column()+" = ?", id).Find(&pairings).Error; err != nil {
			return err
		}
		for i := range pairings {
			if err := c.deletePairing(&pairings[i], slot); err != nil {
				return err
			}
		}
	}

	// 以该成员为关联对象的非主配偶一并删除
	var related []model.OtherSpouse
	if err := c.tx.Where("member_related_to_id = ?", id).Find(&related).Error; err != nil {
		return err
	}
	for _, edge := range related {
		if err := c.deleteMember(edge.MemberID); err != nil {
			return err
		}
		if err := c.deleteEdge(&model.OtherSpouse{}, "id = ?", edge.ID); err != nil {
			return err
		}
	}

	// 作为非主配偶：只删除关系，主配偶及其子女保留
	if err := c.deleteEdge(&model.OtherSpouse{}, "member_id = ?", id); err != nil {
		return err
	}
	if err := c.tx.Model(&model.Child{}).Where("mother_id = ?", id).Update("mother_id", nil).Error; err != nil {
		return err
	}

	if err := c.deleteEdge(&model.Child{}, "child_id = ?", id); err != nil {
		return err
	}

	res = c.tx.Where("id = ?", id).Delete(&model.Member{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		c.deleted = append(c.deleted, id)
		if m.Image != "" {
			c.images = append(c.images, m.Image)
		}
	}
	return nil
}

// deletePairing 删除配偶记录下的子女、伴侣及记录本身。
// 挂在该记录上的非主配偶由丈夫或妻子的关联分支删除
func (c *cascade) deletePairing(pairing *model.Spouse, slot Slot) error {
	var children []model.Child
	if err := c.tx.Where("spouse_id = ?", pairing.ID).Find(&children).Error; err != nil {
		return err
	}
	for _, child := range children {
		if err := c.deleteEdge(&model.Child{}, "id = ?", child.ID); err != nil {
			return err
		}
		if err := c.deleteMember(child.ChildID); err != nil {
			return err
		}
	}

	if partner := slotMember(pairing, slot.Opposite()); partner != nil {
		if err := c.deleteMember(*partner); err != nil {
			return err
		}
	}

	return c.deleteEdge(&model.Spouse{}, "id = ?", pairing.ID)
}

func (c *cascade) deleteEdge(edge interface{}, query string, args ...interface{}) error {
	res := c.tx.Where(query, args...).Delete(edge)
	if res.Error != nil {
		return res.Error
	}
	c.edges += int(res.RowsAffected)
	return nil
}
