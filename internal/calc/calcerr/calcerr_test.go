package calcerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		err := New(CodeUnknownMaterial, "no such material")
		assert.True(t, HasCode(err, CodeUnknownMaterial))
		assert.False(t, HasCode(err, CodeConfiguration))
	})

	t.Run("wrapped by fmt", func(t *testing.T) {
		err := fmt.Errorf("joint j1: %w", New(CodeMalformedLoadCase, "negative tension"))
		assert.True(t, HasCode(err, CodeMalformedLoadCase))
		assert.Equal(t, CodeMalformedLoadCase, CodeOf(err))
	})

	t.Run("inner code reachable", func(t *testing.T) {
		inner := New(CodeUnsupportedThreadSize, "0.3-28")
		err := Wrap(inner, CodeConfiguration, "loading")
		assert.True(t, HasCode(err, CodeUnsupportedThreadSize))
		assert.Equal(t, CodeConfiguration, CodeOf(err))
	})

	t.Run("plain error", func(t *testing.T) {
		err := errors.New("boom")
		assert.False(t, HasCode(err, CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(err))
		assert.Equal(t, "boom", MessageOf(err))
	})
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeInternal, "nothing"))
}

func TestErrorString(t *testing.T) {
	err := Newf(CodeInconsistentUnits, "%s given in both mm and in", "diameter")
	assert.Equal(t, "inconsistent_units: diameter given in both mm and in", err.Error())
	assert.Equal(t, "diameter given in both mm and in", MessageOf(err))
}
