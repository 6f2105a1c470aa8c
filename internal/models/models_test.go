package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagFilterResolve(t *testing.T) {
	tests := []struct {
		name       string
		flag       FlagFilter
		dflt       FlagFilter
		wantValue  bool
		wantFilter bool
	}{
		{"default falls back to false-match", FlagDefault, FlagFalse, false, true},
		{"default falls back to no filter", FlagDefault, FlagAny, false, false},
		{"explicit true", FlagTrue, FlagFalse, true, true},
		{"explicit false", FlagFalse, FlagAny, false, true},
		{"explicit any disables filtering", FlagAny, FlagFalse, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, filter := tt.flag.Resolve(tt.dflt)
			assert.Equal(t, tt.wantValue, value)
			assert.Equal(t, tt.wantFilter, filter)
		})
	}
}

func TestFlagPatchField(t *testing.T) {
	t.Run("empty patch carries nothing", func(t *testing.T) {
		_, _, ok := FlagPatch{}.Field()
		assert.False(t, ok)
	})

	t.Run("archived precedes liked and deleted", func(t *testing.T) {
		name, value, ok := FlagPatch{
			Archived: Bool(true),
			Liked:    Bool(true),
			Deleted:  Bool(true),
		}.Field()
		assert.True(t, ok)
		assert.Equal(t, "archived", name)
		assert.True(t, value)
	})

	t.Run("liked precedes deleted", func(t *testing.T) {
		name, value, ok := FlagPatch{
			Liked:   Bool(false),
			Deleted: Bool(true),
		}.Field()
		assert.True(t, ok)
		assert.Equal(t, "liked", name)
		assert.False(t, value)
	})
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "readingfan", NormalizeUsername("ReadingFan"))
	assert.Equal(t, "", NormalizeUsername(""))
}
