package scheduler

// Input is everything the priority score may look at for one entity
type Input struct {
	Visible       bool    // currently in the UI viewport
	Active        bool    // series still airing; false for movies and ended series
	ProgressRatio float64 // watched fraction in [0,1]
	NeverSynced   bool    // no successful refresh recorded yet
}

// Score tiers, highest refreshed first. Viewport visibility overrides
// everything; never-synced entities get an additive boost within their tier.
const (
	scoreVisible       = 1000
	scoreActivePartial = 300
	scoreActiveOther   = 200
	scoreEndedProgress = 100
	scoreEndedNone     = 0
	boostNeverSynced   = 50
)

// Score ranks an entity for the refresh queue
func Score(in Input) int {
	score := tier(in)
	if in.Visible {
		score += scoreVisible
	}
	if in.NeverSynced {
		score += boostNeverSynced
	}
	return score
}

func tier(in Input) int {
	partial := in.ProgressRatio > 0 && in.ProgressRatio < 1

	switch {
	case in.Active && partial:
		return scoreActivePartial
	case in.Active:
		return scoreActiveOther
	case in.ProgressRatio > 0:
		return scoreEndedProgress
	default:
		return scoreEndedNone
	}
}
