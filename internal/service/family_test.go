package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familytree_go/internal/model"
)

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

// =============================================================================
// RegisterMemberWithRelationships
// =============================================================================

func TestRegister_MemberOnly(t *testing.T) {
	s, db := newTestFamily(t)

	reg := register(t, s, &RegisterMemberInput{MemberInput: person("Obi", "male")})

	assert.NotEmpty(t, reg.Member.ID)
	assert.Nil(t, reg.Pairing)
	assert.Equal(t, int64(1), count(t, db, &model.Member{}))
	assert.Equal(t, int64(0), count(t, db, &model.Spouse{}))
}

func TestRegister_SlotsFollowGender(t *testing.T) {
	s, _ := newTestFamily(t)

	reg := register(t, s, &RegisterMemberInput{
		MemberInput:    person("Ada", "female"),
		RelationsInput: RelationsInput{Spouse: &MemberInput{FirstName: "Emeka", LastName: "Okafor", Gender: "male", DateOfBirth: "10-02-1968"}},
	})

	require.NotNil(t, reg.Pairing)
	require.NotNil(t, reg.Pairing.WifeID)
	require.NotNil(t, reg.Pairing.HusbandID)
	assert.Equal(t, reg.Member.ID, *reg.Pairing.WifeID)
	assert.NotEqual(t, reg.Member.ID, *reg.Pairing.HusbandID)
}

func TestRegister_DateRoundTrip(t *testing.T) {
	s, _ := newTestFamily(t)
	in := person("Obi", "male")
	in.DateOfBirth = "1990-05-02"

	reg := register(t, s, &RegisterMemberInput{MemberInput: in})
	view, err := s.GetMember(context.Background(), reg.Member.ID)
	require.NoError(t, err)

	assert.Equal(t, "02 May 1990", view.DateOfBirth)
	parsed, err := ParseDisplay(view.DateOfBirth)
	require.NoError(t, err)
	assert.Equal(t, "1990-05-02", parsed.Format(DateLayout))
}

func TestRegister_SecondWifeConflicts(t *testing.T) {
	s, db := newTestFamily(t)
	f := seedFamily(t, s)

	_, err := s.EditMember(context.Background(), f.husband, &EditMemberInput{
		RelationsInput: RelationsInput{Spouse: &MemberInput{FirstName: "Ifeoma", LastName: "Eze", Gender: "female", DateOfBirth: "1975-07-01"}},
	})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrConflict))
	assert.Contains(t, err.Error(), "already have wife")

	var pairing model.Spouse
	require.NoError(t, db.Where("id = ?", f.pairing).First(&pairing).Error)
	assert.Equal(t, f.wife, *pairing.WifeID)
	assert.Equal(t, f.husband, *pairing.HusbandID)
	// 失败的新配偶未写入
	assert.Equal(t, int64(4), count(t, db, &model.Member{}))
}

func TestRegister_SameSpouseTwiceIsNoop(t *testing.T) {
	s, db := newTestFamily(t)
	f := seedFamily(t, s)

	_, err := s.EditMember(context.Background(), f.husband, &EditMemberInput{
		RelationsInput: RelationsInput{Spouse: &MemberInput{ID: f.wife}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count(t, db, &model.Spouse{}))
}

func TestRegister_SameGenderSpouseRejected(t *testing.T) {
	s, db := newTestFamily(t)

	_, err := s.RegisterMemberWithRelationships(context.Background(), &RegisterMemberInput{
		MemberInput:    person("Obi", "male"),
		RelationsInput: RelationsInput{Spouse: &MemberInput{FirstName: "Tunde", LastName: "Bello", Gender: "male", DateOfBirth: "1970-01-01"}},
	})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrValidation))
	assert.Equal(t, int64(0), count(t, db, &model.Member{}))
}

func TestRegister_InvalidPayloadWritesNothing(t *testing.T) {
	s, db := newTestFamily(t)

	cases := []struct {
		name string
		in   RegisterMemberInput
	}{
		{"bad gender", RegisterMemberInput{MemberInput: MemberInput{FirstName: "A", LastName: "B", Gender: "other", DateOfBirth: "1970-01-01"}}},
		{"bad date", RegisterMemberInput{MemberInput: MemberInput{FirstName: "A", LastName: "B", Gender: "male", DateOfBirth: "1970/01/01"}}},
		{"missing name", RegisterMemberInput{MemberInput: MemberInput{LastName: "B", Gender: "male", DateOfBirth: "1970-01-01"}}},
		{"deceased without date", RegisterMemberInput{MemberInput: MemberInput{FirstName: "A", LastName: "B", Gender: "male", DateOfBirth: "1970-01-01", Status: "deceased"}}},
		{"bad child type", RegisterMemberInput{
			MemberInput:    person("Obi", "male"),
			RelationsInput: RelationsInput{Children: []ChildInput{{MemberInput: person("Kid", "male"), ChildType: "nephew"}}},
		}},
		{"mother index out of range", RegisterMemberInput{
			MemberInput:    person("Obi", "male"),
			RelationsInput: RelationsInput{Children: []ChildInput{{MemberInput: person("Kid", "male"), ChildType: "son", MotherIndex: intPtr(0)}}},
		}},
		{"id on primary", RegisterMemberInput{MemberInput: MemberInput{ID: "abc"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.RegisterMemberWithRelationships(context.Background(), &tc.in)
			require.Error(t, err)
			assert.True(t, IsCode(err, ErrValidation), "got %v", err)
		})
	}
	assert.Equal(t, int64(0), count(t, db, &model.Member{}))
}

func TestRegister_UnknownReferenceIsNotFound(t *testing.T) {
	s, db := newTestFamily(t)

	_, err := s.RegisterMemberWithRelationships(context.Background(), &RegisterMemberInput{
		MemberInput:    person("Obi", "male"),
		RelationsInput: RelationsInput{Spouse: &MemberInput{ID: "missing"}},
	})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrNotFound))
	// 事务回滚，主成员也未写入
	assert.Equal(t, int64(0), count(t, db, &model.Member{}))
}

func TestRegister_OtherSpouseAndMotherIndex(t *testing.T) {
	s, db := newTestFamily(t)

	wife := MemberInput{FirstName: "Ada", LastName: "Okafor", Gender: "female", DateOfBirth: "1972-03-09"}
	reg := register(t, s, &RegisterMemberInput{
		MemberInput: person("Emeka", "male"),
		RelationsInput: RelationsInput{
			Spouse: &wife,
			OtherSpouses: []OtherSpouseInput{
				{MemberInput: MemberInput{FirstName: "Funke", LastName: "Ade", Gender: "female", DateOfBirth: "1980-11-20"}, RelationshipType: string(model.RelationshipSecondaryWife)},
			},
			Children: []ChildInput{
				{MemberInput: person("Chidi", "male"), ChildType: "son"},
				{MemberInput: person("Tolu", "female"), ChildType: "daughter", MotherIndex: intPtr(0)},
			},
		},
	})

	require.Len(t, reg.OtherSpouses, 1)
	other := reg.OtherSpouses[0]
	assert.Equal(t, reg.Member.ID, other.MemberRelatedToID)
	assert.Equal(t, reg.Pairing.ID, other.SpouseID)

	require.Len(t, reg.Children, 2)
	assert.Nil(t, reg.Children[0].MotherID)
	require.NotNil(t, reg.Children[1].MotherID)
	assert.Equal(t, other.MemberID, *reg.Children[1].MotherID)
	assert.Equal(t, int64(5), count(t, db, &model.Member{}))
}

func TestRegister_PrimaryWifeAsMotherIsDropped(t *testing.T) {
	s, _ := newTestFamily(t)
	f := seedFamily(t, s)

	_, err := s.EditMember(context.Background(), f.husband, &EditMemberInput{
		RelationsInput: RelationsInput{Children: []ChildInput{
			{MemberInput: person("Uche", "male"), ChildType: "son", MotherID: f.wife},
		}},
	})
	require.NoError(t, err)

	chain, err := s.GetFamilyChain(context.Background(), f.wife)
	require.NoError(t, err)
	assert.Len(t, chain.Children, 3)
}

func TestRegister_MotherMustBeOtherSpouse(t *testing.T) {
	s, _ := newTestFamily(t)
	f := seedFamily(t, s)
	stranger := register(t, s, &RegisterMemberInput{MemberInput: person("Bisi", "female")})

	_, err := s.EditMember(context.Background(), f.husband, &EditMemberInput{
		RelationsInput: RelationsInput{Children: []ChildInput{
			{MemberInput: person("Uche", "male"), ChildType: "son", MotherID: stranger.Member.ID},
		}},
	})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrValidation))
}

func TestRegister_ChildWithOtherParents(t *testing.T) {
	s, _ := newTestFamily(t)
	f := seedFamily(t, s)
	other := register(t, s, &RegisterMemberInput{MemberInput: person("Tunde", "male")})

	_, err := s.EditMember(context.Background(), other.Member.ID, &EditMemberInput{
		RelationsInput: RelationsInput{Children: []ChildInput{
			{MemberInput: ref(f.children[0]), ChildType: "stepson"},
		}},
	})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrConflict))
	assert.Contains(t, err.Error(), "already have parents")
}

// =============================================================================
// EditMember
// =============================================================================

func TestEditMember_PartialUpdate(t *testing.T) {
	s, _ := newTestFamily(t)
	reg := register(t, s, &RegisterMemberInput{MemberInput: person("Obi", "male")})

	view, err := s.EditMember(context.Background(), reg.Member.ID, &EditMemberInput{
		Occupation: strPtr("Engineer"),
		Status:     strPtr("deceased"),
		DeceasedAt: strPtr("2020-06-01"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Obi", view.FirstName)
	assert.Equal(t, "Engineer", view.Occupation)
	assert.Equal(t, model.StatusDeceased, view.Status)
	assert.Equal(t, "01 Jun 2020", view.DeceasedAt)
}

func TestEditMember_GenderLockedWhilePaired(t *testing.T) {
	s, _ := newTestFamily(t)
	f := seedFamily(t, s)

	_, err := s.EditMember(context.Background(), f.husband, &EditMemberInput{Gender: strPtr("female")})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrValidation))

	_, err = s.EditMember(context.Background(), f.children[0], &EditMemberInput{Gender: strPtr("female")})
	assert.NoError(t, err)
}

func TestEditMember_NotFound(t *testing.T) {
	s, _ := newTestFamily(t)

	_, err := s.EditMember(context.Background(), "missing", &EditMemberInput{Occupation: strPtr("x")})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrNotFound))
}

// =============================================================================
// ListMembers
// =============================================================================

func TestListMembers_SearchAndPaging(t *testing.T) {
	s, _ := newTestFamily(t)
	seedFamily(t, s)
	register(t, s, &RegisterMemberInput{MemberInput: MemberInput{FirstName: "Zainab", LastName: "Bello", Gender: "female", DateOfBirth: "1985-04-04"}})

	page, err := s.ListMembers(context.Background(), 1, 2, "")
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 3, page.Pages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Bello", page.Items[0].LastName)

	page, err = s.ListMembers(context.Background(), 1, 0, "zain")
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, DefaultPerPage, page.PerPage)
}

func TestRegister_MergesOneSidedPairings(t *testing.T) {
	s, db := newTestFamily(t)
	ctx := context.Background()

	husband := register(t, s, &RegisterMemberInput{
		MemberInput: person("Emeka", "male"),
		RelationsInput: RelationsInput{
			Children: []ChildInput{{MemberInput: person("Chidi", "male"), ChildType: "son"}},
		},
	})
	wife := register(t, s, &RegisterMemberInput{
		MemberInput: MemberInput{FirstName: "Ada", LastName: "Eze", Gender: "female", DateOfBirth: "1972-03-09"},
		RelationsInput: RelationsInput{
			OtherSpouses: []OtherSpouseInput{
				{MemberInput: person("Tunde", "male"), RelationshipType: "ex-husband"},
			},
			Children: []ChildInput{{MemberInput: person("Ngozi", "female"), ChildType: "daughter"}},
		},
	})
	require.Equal(t, int64(2), count(t, db, &model.Spouse{}))

	_, err := s.EditMember(ctx, husband.Member.ID, &EditMemberInput{
		RelationsInput: RelationsInput{Spouse: &MemberInput{ID: wife.Member.ID}},
	})
	require.NoError(t, err)

	var pairings []model.Spouse
	require.NoError(t, db.Find(&pairings).Error)
	require.Len(t, pairings, 1)
	assert.Equal(t, husband.Member.ID, *pairings[0].HusbandID)
	assert.Equal(t, wife.Member.ID, *pairings[0].WifeID)

	var children []model.Child
	require.NoError(t, db.Find(&children).Error)
	require.Len(t, children, 2)
	for _, c := range children {
		assert.Equal(t, pairings[0].ID, c.SpouseID)
	}

	var edge model.OtherSpouse
	require.NoError(t, db.First(&edge).Error)
	assert.Equal(t, pairings[0].ID, edge.SpouseID)
	assert.Equal(t, wife.Member.ID, edge.MemberRelatedToID)

	chain, err := s.GetFamilyChain(ctx, husband.Member.ID)
	require.NoError(t, err)
	assert.Len(t, chain.Children, 2)
}

func TestRegister_MergeDropsOtherSpouseEdgeBetweenCouple(t *testing.T) {
	s, db := newTestFamily(t)
	ctx := context.Background()

	husband := register(t, s, &RegisterMemberInput{
		MemberInput: person("Emeka", "male"),
		RelationsInput: RelationsInput{
			Children: []ChildInput{{MemberInput: person("Chidi", "male"), ChildType: "son"}},
		},
	})
	wife := register(t, s, &RegisterMemberInput{
		MemberInput: MemberInput{FirstName: "Ada", LastName: "Eze", Gender: "female", DateOfBirth: "1972-03-09"},
		RelationsInput: RelationsInput{
			OtherSpouses: []OtherSpouseInput{{MemberInput: ref(husband.Member.ID), RelationshipType: "partner"}},
		},
	})
	require.Len(t, wife.OtherSpouses, 1)

	_, err := s.EditMember(ctx, husband.Member.ID, &EditMemberInput{
		RelationsInput: RelationsInput{Spouse: &MemberInput{ID: wife.Member.ID}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), count(t, db, &model.Spouse{}))
	assert.Equal(t, int64(0), count(t, db, &model.OtherSpouse{}))
	assert.Equal(t, int64(1), count(t, db, &model.Child{}))
}

func TestRegister_PartnerWithSpouseStillConflicts(t *testing.T) {
	s, db := newTestFamily(t)
	f := seedFamily(t, s)

	single := register(t, s, &RegisterMemberInput{
		MemberInput: person("Obi", "male"),
		RelationsInput: RelationsInput{
			Children: []ChildInput{{MemberInput: person("Uche", "male"), ChildType: "son"}},
		},
	})

	_, err := s.EditMember(context.Background(), single.Member.ID, &EditMemberInput{
		RelationsInput: RelationsInput{Spouse: &MemberInput{ID: f.wife}},
	})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrConflict))
	assert.Contains(t, err.Error(), "already have husband")
	assert.Equal(t, int64(2), count(t, db, &model.Spouse{}))
}
