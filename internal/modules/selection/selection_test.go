package selection

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		items      []string
		wantValid  bool
		wantErrors []string
	}{
		{
			name:       "empty selection",
			items:      []string{},
			wantValid:  false,
			wantErrors: []string{ErrMsgEmpty},
		},
		{
			name:       "nil selection",
			items:      nil,
			wantValid:  false,
			wantErrors: []string{ErrMsgEmpty},
		},
		{
			name:      "single item",
			items:     []string{"Large Cap"},
			wantValid: true,
		},
		{
			name:      "exactly ten items",
			items:     tickers(10),
			wantValid: true,
		},
		{
			name:       "eleven items",
			items:      tickers(11),
			wantValid:  false,
			wantErrors: []string{ErrMsgTooMany},
		},
		{
			name:       "duplicates",
			items:      []string{"Gold", "Silver", "Gold"},
			wantValid:  false,
			wantErrors: []string{ErrMsgDuplicates},
		},
		{
			name:       "too many and duplicates reported in rule order",
			items:      append(tickers(10), "cat0"),
			wantValid:  false,
			wantErrors: []string{ErrMsgTooMany, ErrMsgDuplicates},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.items)
			assert.Equal(t, tt.wantValid, result.IsValid)
			assert.Equal(t, tt.wantErrors, result.Errors)
		})
	}
}

func TestAttemptToggleAdd(t *testing.T) {
	items := []string{"Gold"}

	next, err := AttemptToggle(items, "Silver")
	require.NoError(t, err)
	assert.Equal(t, []string{"Gold", "Silver"}, next)
	assert.Equal(t, []string{"Gold"}, items, "input must not be mutated")
}

func TestAttemptToggleRemove(t *testing.T) {
	items := []string{"Gold", "Silver", "Large Cap"}

	next, err := AttemptToggle(items, "Silver")
	require.NoError(t, err)
	assert.Equal(t, []string{"Gold", "Large Cap"}, next)
	assert.Len(t, items, 3, "input must not be mutated")
}

func TestAttemptToggleOverLimit(t *testing.T) {
	items := tickers(10)

	next, err := AttemptToggle(items, "one more")
	require.Error(t, err)
	assert.Nil(t, next)

	var toggleErr *ToggleError
	require.ErrorAs(t, err, &toggleErr)
	assert.Equal(t, "one more", toggleErr.Item)
	assert.Equal(t, ErrMsgTooMany, toggleErr.Reason)
}

func TestAttemptToggleRemoveAtLimit(t *testing.T) {
	items := tickers(10)

	// Removing from a full selection is always allowed.
	next, err := AttemptToggle(items, items[0])
	require.NoError(t, err)
	assert.Len(t, next, 9)
}

func tickers(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("cat%d", i)
	}
	return out
}
