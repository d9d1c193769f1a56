package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"familytree_go/internal/model"
)

func TestSlotFor(t *testing.T) {
	assert.Equal(t, SlotWife, SlotFor(model.GenderFemale))
	assert.Equal(t, SlotHusband, SlotFor(model.GenderMale))
}

func TestSlotHelpers(t *testing.T) {
	assert.Equal(t, SlotHusband, SlotWife.Opposite())
	assert.Equal(t, SlotWife, SlotHusband.Opposite())
	assert.Equal(t, "wife_id", SlotWife.Column())
	assert.Equal(t, "husband", SlotHusband.String())

	var s model.Spouse
	setSlotMember(&s, SlotWife, "w1")
	assert.Nil(t, slotMember(&s, SlotHusband))
	assert.Equal(t, "w1", *slotMember(&s, SlotWife))
	assert.True(t, isPairingMember(&s, "w1"))
	assert.False(t, isPairingMember(&s, "h1"))
}
