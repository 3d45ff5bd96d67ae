package bot

// Tuning weighs the options a GreedyBot considers. The highest positive score wins;
// end_turn scores zero.
type Tuning struct {
	Roll       float64
	Robber     float64
	Settlement float64
	City       float64
	Road       float64
	Card       float64
	Trade      float64
	// Knight is multiplied by the number of opponents on the chosen tile.
	Knight float64
}

// DefaultTuning builds settlements before cities, roads, cards and trades, and only
// plays a knight when it blocks at least one opponent.
var DefaultTuning = Tuning{
	Roll:       100,
	Robber:     100,
	Settlement: 50,
	City:       40,
	Road:       30,
	Card:       20,
	Trade:      10,
	Knight:     15,
}
