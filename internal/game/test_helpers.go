package game

// TestGameOption configures test game creation
type TestGameOption func(*testGameBuilder)

type testGameBuilder struct {
	players  []string
	balances map[int]int
	round    int
	opts     []GameOption
}

// WithPlayers sets the roster names
func WithPlayers(names ...string) TestGameOption {
	return func(b *testGameBuilder) { b.players = names }
}

// WithBalance overrides a single player's balance by roster index
func WithBalance(index, balance int) TestGameOption {
	return func(b *testGameBuilder) { b.balances[index] = balance }
}

// WithRound starts the given round before the game is returned
func WithRound(number int) TestGameOption {
	return func(b *testGameBuilder) { b.round = number }
}

// WithGameOptions passes options through to NewGameState
func WithGameOptions(opts ...GameOption) TestGameOption {
	return func(b *testGameBuilder) { b.opts = append(b.opts, opts...) }
}

// NewTestGame creates a three-player game for testing with a fixed id
func NewTestGame(opts ...TestGameOption) *GameState {
	builder := &testGameBuilder{
		players:  []string{"Alice", "Bob", "Charlie"},
		balances: make(map[int]int),
		opts:     []GameOption{WithGameID("game_test")},
	}
	for _, opt := range opts {
		opt(builder)
	}

	g := NewGameState(builder.players, builder.opts...)
	for i, balance := range builder.balances {
		g.Players[i].Balance = balance
	}
	if builder.round > 0 {
		g.RoundNumber = builder.round - 1
		g.StartNewRound(NewRound(builder.round))
	}
	return g
}

// AnswerCorrectly submits and approves answers for the given questions
func AnswerCorrectly(g *GameState, playerID string, questions ...int) {
	for _, q := range questions {
		if err := g.SubmitAnswer(playerID, q, "data:image/png;base64,"); err != nil {
			panic(err)
		}
		if err := g.ApproveAnswer(playerID, q, true); err != nil {
			panic(err)
		}
	}
}
