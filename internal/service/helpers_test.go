package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"familytree_go/internal/model"
	"familytree_go/internal/repository"
)

// newTestDB 每个测试独立的内存数据库
func newTestDB(t *testing.T) *repository.DB {
	t.Helper()
	db, err := repository.NewMemoryDB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestFamily(t *testing.T) (*FamilyService, *repository.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewFamilyService(db, NewValidator(), NewNopLogger()), db
}

func person(first, gender string) MemberInput {
	return MemberInput{
		FirstName:   first,
		LastName:    "Okafor",
		Gender:      gender,
		DateOfBirth: "1970-01-15",
	}
}

func ref(id string) MemberInput {
	return MemberInput{ID: id}
}

func register(t *testing.T, s *FamilyService, in *RegisterMemberInput) *Registration {
	t.Helper()
	reg, err := s.RegisterMemberWithRelationships(context.Background(), in)
	require.NoError(t, err)
	return reg
}

func count(t *testing.T, db *repository.DB, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Count(&n).Error)
	return n
}

// family 丈夫、妻子与两个子女
type family struct {
	husband, wife string
	children      []string
	pairing       string
}

func seedFamily(t *testing.T, s *FamilyService) family {
	t.Helper()
	reg := register(t, s, &RegisterMemberInput{
		MemberInput: person("Emeka", "male"),
		RelationsInput: RelationsInput{
			Spouse: &MemberInput{FirstName: "Ada", LastName: "Okafor", Gender: "female", DateOfBirth: "1972-03-09"},
			Children: []ChildInput{
				{MemberInput: person("Chidi", "male"), ChildType: string(model.ChildSon)},
				{MemberInput: person("Ngozi", "female"), ChildType: string(model.ChildDaughter)},
			},
		},
	})
	require.NotNil(t, reg.Pairing)
	require.Len(t, reg.Children, 2)
	return family{
		husband:  reg.Member.ID,
		wife:     *reg.Pairing.WifeID,
		children: []string{reg.Children[0].ChildID, reg.Children[1].ChildID},
		pairing:  reg.Pairing.ID,
	}
}
