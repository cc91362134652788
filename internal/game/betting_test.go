package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinimumBet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		round int
		want  int
	}{
		{1, 10},
		{2, 20},
		{3, 40},
		{4, 80},
		{5, 80},
		{7, 80},
	}
	for _, tt := range tests {
		if got := MinimumBet(tt.round); got != tt.want {
			t.Errorf("MinimumBet(%d) = %d, want %d", tt.round, got, tt.want)
		}
	}
}

func TestValidateBetAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		amount  int
		wantErr bool
	}{
		{9, true},
		{10, false},
		{30, false},
		{50, false},
		{51, true},
		{0, true},
		{-10, true},
	}
	for _, tt := range tests {
		err := ValidateBetAmount(tt.amount)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidBetAmount, "amount %d", tt.amount)
		} else {
			assert.NoError(t, err, "amount %d", tt.amount)
		}
	}
}

func TestPhaseNext(t *testing.T) {
	t.Parallel()

	order := []Phase{Initial, CollectingBets, FirstBetting, RevealingAnswers, SecondBetting, DetermineWinner, Completed}
	for i := 0; i < len(order)-1; i++ {
		assert.Equal(t, order[i+1], order[i].Next(), "after %s", order[i])
	}
	assert.Equal(t, Completed, Completed.Next())
}

func TestPhaseIsBetting(t *testing.T) {
	t.Parallel()

	assert.True(t, FirstBetting.IsBetting())
	assert.True(t, SecondBetting.IsBetting())
	assert.False(t, Initial.IsBetting())
	assert.False(t, RevealingAnswers.IsBetting())
}

func TestPhaseJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(RevealingAnswers)
	require.NoError(t, err)
	assert.Equal(t, `"RevealingAnswers"`, string(data))

	var p Phase
	require.NoError(t, json.Unmarshal([]byte(`"SecondBetting"`), &p))
	assert.Equal(t, SecondBetting, p)

	assert.Error(t, json.Unmarshal([]byte(`"Flop"`), &p))
	assert.Equal(t, "Phase(42)", Phase(42).String())
}
