package registry

import (
	"testing"

	"github.com/dominionforge/dominion-core/model"
	"github.com/stretchr/testify/assert"
)

func TestBuildNormalizesNames(t *testing.T) {
	bundle := model.DataBundle{
		Objects: []model.ObjectDef{{Name: "  rifleinfantry  ", Side: "america"}},
	}
	r := Build(bundle)

	def, ok := r.ObjectDef("RifleInfantry")
	assert.True(t, ok)
	assert.Equal(t, "america", def.Side)
}

func TestBuildVariationClass(t *testing.T) {
	bundle := model.DataBundle{
		Objects: []model.ObjectDef{
			{Name: "GLAInfantryRPG", BuildVariations: []string{"GLAInfantryRPGHolding"}},
			{Name: "StandaloneUnit"},
		},
	}
	r := Build(bundle)

	assert.Equal(t, "GLAINFANTRYRPG", r.BuildVariationClass("GLAInfantryRPGHolding"))
	assert.Equal(t, "GLAINFANTRYRPG", r.BuildVariationClass("GLAInfantryRPG"))
	assert.Equal(t, "STANDALONEUNIT", r.BuildVariationClass("StandaloneUnit"))
}

func TestUnresolvedLookupMisses(t *testing.T) {
	r := Build(model.DataBundle{})
	_, ok := r.ObjectDef("DOES_NOT_EXIST")
	assert.False(t, ok)
}

func TestCommandSetExposes(t *testing.T) {
	bundle := model.DataBundle{
		CommandButton: []model.CommandButtonDef{
			{Name: "Build_Barracks", Command: "UNIT_BUILD", Object: "GLABarracks"},
		},
		CommandSets: []model.CommandSetDef{
			{Name: "GLACommandCenter", Slots: map[int]string{0: "Build_Barracks"}},
		},
	}
	r := Build(bundle)

	assert.True(t, r.CommandSetExposes("GLACommandCenter", "object", "GLABarracks"))
	assert.False(t, r.CommandSetExposes("GLACommandCenter", "object", "GLAWarFactory"))
}
