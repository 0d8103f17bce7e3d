// Package score converts the order of correct guesses into point awards.
package score

// Rank awards for guessers, by position of their correct guess. Everyone
// past third place gets the participation award.
var rankAwards = []int{500, 400, 300}

const (
	lateGuessAward = 50
	drawerBonus    = 100
)

// Award is a single player's point delta for the round.
type Award struct {
	PlayerID string
	Points   int
}

// Round computes the awards for one finished round. correctOrder lists player
// ids by first correct guess. The drawer only earns the bonus when at least
// one player guessed the word.
func Round(correctOrder []string, drawerID string) []Award {
	if len(correctOrder) == 0 {
		return nil
	}

	awards := make([]Award, 0, len(correctOrder)+1)
	for rank, id := range correctOrder {
		points := lateGuessAward
		if rank < len(rankAwards) {
			points = rankAwards[rank]
		}
		awards = append(awards, Award{PlayerID: id, Points: points})
	}
	awards = append(awards, Award{PlayerID: drawerID, Points: drawerBonus})
	return awards
}
