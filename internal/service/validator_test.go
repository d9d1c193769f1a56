package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_MemberInput(t *testing.T) {
	v := NewValidator()

	require.NoError(t, v.Struct(&MemberInput{FirstName: "Ada", LastName: "Okafor", Gender: "female", DateOfBirth: "09-03-1972"}))

	err := v.Struct(&MemberInput{FirstName: "Ada", Gender: "unknown", DateOfBirth: "1972/03/09", Status: "missing"})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrValidation))
	msg := err.(*AppError).Message
	assert.Contains(t, msg, "last_name is required")
	assert.Contains(t, msg, "gender must be either 'male' or 'female'")
	assert.Contains(t, msg, "dob must be a valid date")
	assert.Contains(t, msg, "status must be either 'alive' or 'deceased'")
}

func TestValidator_Var(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Var("secondary wife", "relationship_type", "required,relationship_type"))
	assert.NoError(t, v.Var("adopted son", "child_type", "required,child_type"))

	err := v.Var("cousin", "children[0].child_type", "required,child_type")
	require.Error(t, err)
	assert.Equal(t, "children[0].child_type is not a valid child type", err.(*AppError).Message)

	err = v.Var("", "other_spouses[1].relationship_type", "required,relationship_type")
	require.Error(t, err)
	assert.Equal(t, "other_spouses[1].relationship_type is required", err.(*AppError).Message)
}

func TestPrepareRelations_MotherExclusive(t *testing.T) {
	v := NewValidator()

	_, err := v.prepareRelations(&RelationsInput{
		OtherSpouses: []OtherSpouseInput{{MemberInput: ref("o1"), RelationshipType: "partner"}},
		Children: []ChildInput{
			{MemberInput: ref("c1"), ChildType: "son", MotherID: "o1", MotherIndex: intPtr(0)},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestPrepareRelations_PrefixesNestedErrors(t *testing.T) {
	v := NewValidator()

	_, err := v.prepareRelations(&RelationsInput{
		Spouse: &MemberInput{FirstName: "Ada", Gender: "female", DateOfBirth: "1972-03-09"},
	})
	require.Error(t, err)
	assert.Contains(t, err.(*AppError).Message, "spouse: validation errors: last_name is required")
}
