package game

// Turn is the scheduler's verdict for the next round boundary.
type Turn struct {
	NextDrawerID string
	NextRound    int
	Finish       bool
}

// NextTurn advances the drawer along the stable join-ordered player list.
// Wrapping past the last player either bumps the round or, on the last
// round, finishes the game. A drawer id that is no longer in the order
// (player left) restarts from the first player.
func NextTurn(order []string, currentDrawerID string, currentRound, maxRounds int) Turn {
	if len(order) == 0 {
		return Turn{Finish: true}
	}

	idx := -1
	for i, id := range order {
		if id == currentDrawerID {
			idx = i
			break
		}
	}

	if idx >= 0 && idx < len(order)-1 {
		return Turn{NextDrawerID: order[idx+1], NextRound: currentRound}
	}

	// Last drawer of the round (or drawer gone).
	if idx == len(order)-1 && currentRound >= maxRounds {
		return Turn{Finish: true}
	}
	next := currentRound
	if idx == len(order)-1 {
		next++
	}
	return Turn{NextDrawerID: order[0], NextRound: next}
}
