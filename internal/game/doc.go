// Package game implements the round and game progression engine for the
// betting quiz.
//
// The main type is GameState, which owns a fixed roster of players and at most
// one Round. A Round walks a strictly forward phase sequence, holds the pot and
// knows the minimum bet for its number. GameState applies round outcomes back
// onto player balances and enforces the cross-round rules: bankrupt players
// drop out, the lowest balance is cut after round 4 when more than two remain,
// and the game ends after round 7 or when one solvent player is left.
//
// # Basic Usage
//
//	g := game.NewGameState([]string{"Anna", "Bram", "Cees"})
//	_ = g.StartNextRound()
//	_ = g.CollectInitialBets()     // forced minimum bet into current_bet
//	_, _ = g.SweepBetsToPot()      // move every current_bet into the pot
//	_ = g.PlaceBet("player_0", 20) // straight into the pot
//	_, _, err := g.CompleteCurrentRound("") // automatic winner by correct answers
//
// # Concurrency
//
// GameState is not safe for concurrent use. The server package guards the one
// live game with a single mutex and hands out Snapshot copies to readers.
package game
