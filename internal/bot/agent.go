package bot

import (
	"atlas/internal/domain"
	"atlas/internal/geo"
)

// Agent represents an autonomous bot player.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// Play asks the agent to choose its submission for the current turn. The
// session runtime calls this from the session goroutine, so reading session
// state here is safe.
func (a *Agent) Play(sess *domain.Session, index *geo.Index) (string, bool) {
	player := sess.FindPlayer(a.ID)
	if player == nil || player.Eliminated {
		return "", false
	}
	return a.Strategy.PickName(sess, index)
}
