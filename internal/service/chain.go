package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"familytree_go/internal/model"
)

// GetFamilyChain 组装成员的父母、配偶与子女视图，仅向上一代、向下一代
func (s *FamilyService) GetFamilyChain(ctx context.Context, id string) (chain *FamilyChain, err error) {
	defer func() { s.metrics.Observe("family_chain", err) }()

	key := s.chainKey(ctx, id)
	if key != "" {
		var cached FamilyChain
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("family chain cache read failed: %v", err)
		}
		s.metrics.cacheResult(hit)
		if hit {
			return &cached, nil
		}
	}

	chain, err = newChainAssembler(s.db.WithContext(ctx)).assemble(id)
	if err != nil {
		return nil, err
	}

	if key != "" {
		if err := s.cache.Set(ctx, key, chain, s.cacheTTL); err != nil {
			s.logger.Warn("family chain cache write failed: %v", err)
		}
	}
	return chain, nil
}

// chainKey 生成带版本号的缓存键，未启用缓存时返回空串
func (s *FamilyService) chainKey(ctx context.Context, id string) string {
	if s.cache == nil {
		return ""
	}
	var version int64
	if _, err := s.cache.Get(ctx, chainVersionKey, &version); err != nil {
		s.logger.Warn("family chain cache version read failed: %v", err)
		return ""
	}
	return fmt.Sprintf("family:chain:%d:%s", version, id)
}

// chainAssembler 只读组装家族链，成员按ID缓存避免重复查询
type chainAssembler struct {
	db      *gorm.DB
	members map[string]*model.Member
}

func newChainAssembler(db *gorm.DB) *chainAssembler {
	return &chainAssembler{db: db, members: make(map[string]*model.Member)}
}

func (a *chainAssembler) assemble(id string) (*FamilyChain, error) {
	self, err := a.member(&id)
	if err != nil {
		return nil, err
	}
	if self == nil {
		return nil, notFoundError("member", id)
	}

	chain := &FamilyChain{Member: NewMemberView(self), Children: []ChildView{}}

	// 1. 作为子女：父母
	var asChild model.Child
	found, err := a.first(a.db.Where("child_id = ?", id), &asChild)
	if err != nil {
		return nil, err
	}
	if found {
		if chain.Parents, err = a.parents(&asChild); err != nil {
			return nil, err
		}
	}

	seen := make(map[string]bool)

	// 2. 占用主配偶角色：配偶与子女，优先于父母展示
	var pairing model.Spouse
	found, err = a.first(a.db.Where("husband_id = ? OR wife_id = ?", id, id), &pairing)
	if err != nil {
		return nil, err
	}
	if found {
		chain.Parents = nil
		if chain.Spouse, err = a.pairingView(&pairing); err != nil {
			return nil, err
		}

		query := a.db.Where("spouse_id = ?", pairing.ID)
		if pairing.WifeID != nil && *pairing.WifeID == id {
			// 妻子视图不包含其他配偶所生子女
			query = query.Where("mother_id IS NULL")
		}
		if err := a.appendChildren(chain, query, seen); err != nil {
			return nil, err
		}
	}

	// 3. 作为非主配偶：关联的配偶与本人所生子女
	var others []model.OtherSpouse
	if err := a.db.Where("member_id = ?", id).Order("created_at").Find(&others).Error; err != nil {
		return nil, dbError("find other spouses", err)
	}
	if len(others) > 0 {
		chain.Parents = nil
		if chain.Spouse == nil {
			if chain.Spouse, err = a.relatedView(self, &others[0]); err != nil {
				return nil, err
			}
		}
		if err := a.appendChildren(chain, a.db.Where("mother_id = ?", id), seen); err != nil {
			return nil, err
		}
	}

	return chain, nil
}

func (a *chainAssembler) parents(edge *model.Child) (*ParentsView, error) {
	var pairing model.Spouse
	found, err := a.first(a.db.Where("id = ?", edge.SpouseID), &pairing)
	if err != nil || !found {
		return nil, err
	}

	motherID := pairing.WifeID
	if edge.MotherID != nil {
		motherID = edge.MotherID
	}
	father, err := a.member(pairing.HusbandID)
	if err != nil {
		return nil, err
	}
	mother, err := a.member(motherID)
	if err != nil {
		return nil, err
	}
	return &ParentsView{Father: NewMemberView(father), Mother: NewMemberView(mother)}, nil
}

func (a *chainAssembler) pairingView(pairing *model.Spouse) (*SpouseView, error) {
	husband, err := a.member(pairing.HusbandID)
	if err != nil {
		return nil, err
	}
	wife, err := a.member(pairing.WifeID)
	if err != nil {
		return nil, err
	}
	view := &SpouseView{ID: pairing.ID, Husband: NewMemberView(husband), Wife: NewMemberView(wife)}

	var edges []model.OtherSpouse
	if err := a.db.Where("spouse_id = ?", pairing.ID).Order("created_at").Find(&edges).Error; err != nil {
		return nil, dbError("find other spouses", err)
	}
	for i := range edges {
		m, err := a.member(&edges[i].MemberID)
		if err != nil {
			return nil, err
		}
		if m == nil {
			continue
		}
		view.OtherSpouses = append(view.OtherSpouses, OtherSpouseView{
			Member:           NewMemberView(m),
			RelationshipType: edges[i].RelationshipType,
			RelatedTo:        edges[i].MemberRelatedToID,
		})
	}
	return view, nil
}

// relatedView 非主配偶视角：按其性别摆放丈夫与妻子
func (a *chainAssembler) relatedView(self *model.Member, edge *model.OtherSpouse) (*SpouseView, error) {
	related, err := a.member(&edge.MemberRelatedToID)
	if err != nil {
		return nil, err
	}
	view := &SpouseView{ID: edge.SpouseID, RelationshipType: edge.RelationshipType}
	if SlotFor(self.Gender) == SlotWife {
		view.Wife, view.Husband = NewMemberView(self), NewMemberView(related)
	} else {
		view.Husband, view.Wife = NewMemberView(self), NewMemberView(related)
	}
	return view, nil
}

func (a *chainAssembler) appendChildren(chain *FamilyChain, query *gorm.DB, seen map[string]bool) error {
	var edges []model.Child
	if err := query.Order("created_at").Find(&edges).Error; err != nil {
		return dbError("find children", err)
	}
	for i := range edges {
		e := &edges[i]
		if seen[e.ChildID] {
			continue
		}
		seen[e.ChildID] = true

		m, err := a.member(&e.ChildID)
		if err != nil {
			return err
		}
		if m == nil {
			continue
		}
		view := ChildView{Member: NewMemberView(m), ChildType: e.ChildType}
		if e.MotherID != nil {
			view.MotherID = *e.MotherID
		}
		chain.Children = append(chain.Children, view)
	}
	return nil
}

// member 按ID加载成员，ID为空或不存在时返回nil
func (a *chainAssembler) member(id *string) (*model.Member, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	if m, ok := a.members[*id]; ok {
		return m, nil
	}
	var m model.Member
	found, err := a.first(a.db.Where("id = ?", *id), &m)
	if err != nil {
		return nil, err
	}
	if !found {
		a.members[*id] = nil
		return nil, nil
	}
	a.members[*id] = &m
	return &m, nil
}

func (a *chainAssembler) first(query *gorm.DB, dest interface{}) (bool, error) {
	res := query.Limit(1).Find(dest)
	if res.Error != nil {
		return false, dbError("query", res.Error)
	}
	return res.RowsAffected > 0, nil
}
