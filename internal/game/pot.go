package game

// AddToPot adds an aggregate amount to the pot. The round only tracks the
// total; callers that sweep bets are responsible for zeroing them.
func (r *Round) AddToPot(amount int) {
	r.Pot += amount
}

// ProcessBet validates a betting-phase bet and moves it straight from the
// player's balance into the pot, bypassing CurrentBet.
func (r *Round) ProcessBet(player *Player, amount int) error {
	if err := ValidateBetAmount(amount); err != nil {
		return err
	}
	if err := player.Debit(amount); err != nil {
		return err
	}
	r.Pot += amount
	return nil
}

// TotalBets sums every player's uncollected bet
func TotalBets(players []*Player) int {
	total := 0
	for _, p := range players {
		total += p.CurrentBet
	}
	return total
}

// CollectBets sweeps every player's current bet into the pot and zeroes it.
// It returns the amount moved.
func (r *Round) CollectBets(players []*Player) int {
	total := TotalBets(players)
	r.AddToPot(total)
	for _, p := range players {
		p.CurrentBet = 0
	}
	return total
}
