package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, DEBUG, lvl)

	lvl, err = ParseLevel(" Warning ")
	require.NoError(t, err)
	assert.Equal(t, WARN, lvl)

	_, err = ParseLevel("chatty")
	assert.Error(t, err)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	prev := GetLevel()
	SetLevel(WARN)
	defer SetLevel(prev)

	Info("hidden")
	Warn("shown", 3, errors.New("boom"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] logger_test.go:")
	assert.Contains(t, out, "shown 3 boom")
}

func TestNonPrimitivesAreDumpedAsJSON(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	prev := GetLevel()
	SetLevel(DEBUG)
	defer SetLevel(prev)

	Debug("record", map[string]string{"home_team": "Arsenal"})

	out := buf.String()
	assert.Contains(t, out, "[Object of type map[string]string]")
	assert.Contains(t, out, `"home_team": "Arsenal"`)
}

func TestSetLogOutputRejectsUnknownType(t *testing.T) {
	assert.Error(t, SetLogOutput('x'))
}
