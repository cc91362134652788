package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessBet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		balance   int
		amount    int
		wantErr   error
		wantPot   int
		wantStack int
	}{
		{"minimum", 750, 10, nil, 10, 740},
		{"maximum", 750, 50, nil, 50, 700},
		{"below minimum", 750, 9, ErrInvalidBetAmount, 0, 750},
		{"above maximum", 750, 51, ErrInvalidBetAmount, 0, 750},
		{"cannot afford", 30, 40, ErrInsufficientFunds, 0, 30},
		{"exact balance", 40, 40, nil, 40, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := NewPlayerWithBalance("player_0", "Alice", tt.balance)
			r := NewRound(1)

			err := r.ProcessBet(p, tt.amount)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantPot, r.Pot)
			assert.Equal(t, tt.wantStack, p.Balance)
			assert.Zero(t, p.CurrentBet, "betting-phase bets go straight to the pot")
		})
	}
}

func TestCollectBets(t *testing.T) {
	t.Parallel()

	players := threePlayers()
	require.NoError(t, players[0].PlaceBet(20))
	require.NoError(t, players[1].PlaceBet(30))

	assert.Equal(t, 50, TotalBets(players))

	r := NewRound(1)
	r.AddToPot(5)
	moved := r.CollectBets(players)

	assert.Equal(t, 50, moved)
	assert.Equal(t, 55, r.Pot)
	assert.Zero(t, TotalBets(players))

	assert.Zero(t, r.CollectBets(players), "second sweep moves nothing")
	assert.Equal(t, 55, r.Pot)
}
