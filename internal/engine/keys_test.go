package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/calc/internal/history"
)

func TestNormalizeKey(t *testing.T) {
	tests := map[string]string{
		"＋":     "+",
		"１":     "1",
		"＝":     "=",
		"AC":    "c",
		"ce":    "c",
		"Clear": "c",
		"×":     "*",
		"x":     "*",
		"÷":     "/",
		"−":     "-",
		" = ":   "=",
		"7":     "7",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, NormalizeKey(in))
		})
	}
}

func TestSplitKeys(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"12+3=", []string{"1", "2", "+", "3", "="}},
		{"2 x 3 =", []string{"2", "x", "3", "="}},
		{"１２＋３＝", []string{"1", "2", "+", "3", "="}},
		{"AC 5", []string{"AC", "5"}},
		{"2×3", []string{"2", "×", "3"}},
		{"50%", []string{"5", "0", "%"}},
		{"   ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitKeys(tt.line))
		})
	}
}

func TestPress_FullwidthLine(t *testing.T) {
	e, mem := newTestEngine(t)
	require.NoError(t, e.PressAll(context.Background(), SplitKeys("１２＋３＝")))

	assert.Equal(t, "15", e.State().Display)
	entries, _ := mem.List(context.Background())
	require.Len(t, entries, 1)
	assert.Equal(t, "12 + 3 = 15", entries[0].Expression)
}

func TestPress_UnknownKey(t *testing.T) {
	e, _ := newTestEngine(t)

	err := e.Press(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownKey)
	assert.Contains(t, err.Error(), `"q"`)
}

func TestPressAll_StopsAtFirstError(t *testing.T) {
	e, _ := newTestEngine(t)

	err := e.PressAll(context.Background(), []string{"1", "?", "2"})
	require.Error(t, err)
	assert.Equal(t, "1", e.State().Display)
}

func TestPress_EqualsReturnsStorageError(t *testing.T) {
	e := New(&failingRecorder{})

	err := e.PressAll(context.Background(), SplitKeys("1+1="))
	require.Error(t, err)
	assert.True(t, history.IsStorageError(err))
	assert.Equal(t, "2", e.State().Display)
}

func TestPressAll_ContinuesAfterStorageError(t *testing.T) {
	rec := &failingRecorder{}
	e := New(rec)

	err := e.PressAll(context.Background(), SplitKeys("1+1=x3="))
	require.Error(t, err)
	assert.True(t, history.IsStorageError(err))
	assert.Equal(t, "6", e.State().Display)
	assert.Equal(t, OpNone, e.State().Operation)
	assert.Equal(t, 2, rec.calls)
}

func TestPressAll_UnknownKeyAfterStorageError(t *testing.T) {
	e := New(&failingRecorder{})

	err := e.PressAll(context.Background(), SplitKeys("1+1=q5"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownKey)
	assert.True(t, history.IsStorageError(err))
	assert.Equal(t, "2", e.State().Display)
}

func TestEngineError(t *testing.T) {
	err := NewUnknownKeyError("z")
	assert.True(t, errors.Is(err, ErrUnknownKey))
	assert.False(t, errors.Is(err, ErrDivisionByZero))
	assert.Equal(t, `UNKNOWN_KEY: unknown key ("z")`, err.Error())

	assert.True(t, IsArithmeticError(ErrDivisionByZero))
	assert.True(t, IsArithmeticError(ErrNonFinite))
	assert.False(t, IsArithmeticError(err))
	assert.False(t, IsArithmeticError(errors.New("other")))
}
