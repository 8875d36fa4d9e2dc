package pipeline

import (
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/pretzelhammer/drawduel/internal/clock"
	"github.com/pretzelhammer/drawduel/internal/game"
)

// maxCascadeDepth bounds the response chain. The longest legal chain is
// ready → game-phase → new-round → round-phase → timer (depth 4); the
// bound exists to catch a future response accidentally responding to
// itself.
const maxCascadeDepth = 8

// run gates, applies and records one event, then recursively runs its
// response events. Everything appended to out has been applied to the
// state in that order.
func (g *Game) run(e game.Event, depth int, out *[]game.Event) {
	if depth > maxCascadeDepth {
		g.log.Error("response cascade exceeded depth bound",
			zap.String("event", string(e.EventType())))
		return
	}
	if !game.CanAdvance(g.state, e) {
		g.log.Debug("response event rejected by guard",
			zap.String("event", string(e.EventType())))
		return
	}
	game.Advance(g.state, e)
	*out = append(*out, e)
	for _, r := range g.respond(e) {
		g.run(r, depth+1, out)
	}
}

// respond synthesizes the follow-up events an applied event triggers,
// arming or cancelling the auto-advance deadline as a side effect.
func (g *Game) respond(applied game.Event) []game.Event {
	switch e := applied.(type) {
	case game.Join:
		return g.respondRosterChange()

	case game.Left:
		return append(g.respondRosterChange(), g.holdoutGone()...)

	case game.Disconnect:
		return g.holdoutGone()

	case game.Ready:
		return g.respondReady()

	case game.GamePhaseChange:
		g.firstReadyAt = 0
		if e.Phase == game.PhaseRounds && len(g.state.Teams) > 0 {
			return []game.Event{game.NewRound{Round: g.makeRound()}}
		}
		return nil

	case game.NewRound:
		g.firstReadyAt = 0
		return []game.Event{game.RoundPhaseChange{Phase: game.RoundPickWord}}

	case game.RoundPhaseChange:
		switch e.Phase {
		case game.RoundPickWord:
			return g.armDeadline(g.state.Rules.WordChoiceWait())
		case game.RoundPrePlay:
			return g.armDeadline(g.state.Rules.PrePlayWait())
		case game.RoundPlay:
			r := g.state.CurrentRound()
			return g.armDeadline(g.state.Rules.PlayWait(r.Difficulty))
		}
		return nil

	case game.Choose:
		// word is resolved, the choice window no longer applies
		g.sched.stop()
		return []game.Event{game.RoundPhaseChange{Phase: game.RoundPrePlay}}
	}
	return nil
}

// respondRosterChange rebalances teams while the roster can still
// change freely. The balancer returns a full reassignment; the guard
// inside run drops the no-op moves.
func (g *Game) respondRosterChange() []game.Event {
	if g.state.Phase != game.PhasePreGame {
		return nil
	}
	moves, err := game.Rebalance(g.state)
	if err != nil {
		// capacity guard tripped; nothing sane to emit
		g.log.Error("team rebalance failed", zap.Error(err),
			zap.Int("players", len(g.state.Players)))
		return nil
	}
	out := make([]game.Event, len(moves))
	for i, m := range moves {
		out[i] = m
	}
	return out
}

// holdoutGone advances out of pre-game when the departed player was the
// last unready holdout; the players still waiting shouldn't have to sit
// out the rest of a countdown aimed at someone who is gone.
func (g *Game) holdoutGone() []game.Event {
	if g.state.Phase != game.PhasePreGame {
		return nil
	}
	if !g.state.AnyReady() || g.state.UnreadyConnected() > 0 {
		return nil
	}
	g.sched.stop()
	g.firstReadyAt = 0
	return g.advanceEvents()
}

// respondReady either advances immediately (everyone connected is
// ready) or re-arms the ready deadline: first-ready time plus one wait
// unit per player still unready.
func (g *Game) respondReady() []game.Event {
	if g.state.UnreadyConnected() == 0 {
		g.sched.stop()
		g.firstReadyAt = 0
		return g.advanceEvents()
	}
	if g.firstReadyAt == 0 {
		g.firstReadyAt = clock.Now(g.cfg.Clock)
	}
	wait := time.Duration(g.state.UnreadyConnected()) * g.state.Rules.UnreadyPlayerWait()
	deadline := clock.At(g.firstReadyAt.Time().Add(wait))
	g.sched.arm(clock.Until(g.cfg.Clock, deadline))
	return []game.Event{game.Timer{Deadline: deadline}}
}

// advanceEvents is the next-phase step for the current ready window:
// out of pre-game into rounds, or out of post-round into the next
// round, the lightning round, or post-game.
func (g *Game) advanceEvents() []game.Event {
	switch g.state.Phase {
	case game.PhasePreGame:
		return []game.Event{game.GamePhaseChange{Phase: game.PhaseRounds}}
	case game.PhaseRounds:
		if g.state.Round < g.state.Rules.MaxRoundID() {
			return []game.Event{game.NewRound{Round: g.makeRound()}}
		}
		if g.state.Rules.LightningRound {
			return []game.Event{game.GamePhaseChange{Phase: game.PhaseLightningRound}}
		}
		return []game.Event{game.GamePhaseChange{Phase: game.PhasePostGame}}
	}
	return nil
}

// deadlineEvents derives what an expired deadline means from the state
// alone; the guards re-validate each event, so a deadline that raced a
// faster transition degrades to nothing.
func (g *Game) deadlineEvents() []game.Event {
	switch g.state.Phase {
	case game.PhasePreGame:
		// waited long enough for the unready
		return g.advanceEvents()
	case game.PhaseRounds:
		r := g.state.CurrentRound()
		if r == nil {
			return nil
		}
		switch r.Phase {
		case game.RoundPickWord:
			if r.Word == "" {
				// chooser never picked; resolve to the easy word so the
				// play window has a difficulty
				return []game.Event{game.Choose{ID: r.Chooser, Difficulty: game.DifficultyEasy}}
			}
			return []game.Event{game.RoundPhaseChange{Phase: game.RoundPrePlay}}
		case game.RoundPrePlay:
			return []game.Event{game.RoundPhaseChange{Phase: game.RoundPlay}}
		case game.RoundPlay:
			if g.state.Round == g.state.Rules.MaxRoundID() && !g.state.Rules.LightningRound {
				// final round, nothing after it: skip post-round
				return []game.Event{game.GamePhaseChange{Phase: game.PhasePostGame}}
			}
			return []game.Event{game.RoundPhaseChange{Phase: game.RoundPostRound}}
		case game.RoundPostRound:
			return g.advanceEvents()
		}
	}
	return nil
}

// armDeadline replaces the outstanding deadline and returns the timer
// event announcing it.
func (g *Game) armDeadline(d time.Duration) []game.Event {
	deadline := clock.FromNow(g.cfg.Clock, d)
	g.sched.arm(d)
	return []game.Event{game.Timer{Deadline: deadline}}
}

// makeRound builds the next round record: one drawer per team, a
// chooser among the drawers, and a fresh word pair.
func (g *Game) makeRound() game.Round {
	drawers := g.selectDrawers()
	easy, hard := game.PickWordPair(g.rng)
	teams := map[game.TeamID]*game.RoundTeam{}
	for _, tid := range g.state.TeamIDs() {
		teams[tid] = &game.RoundTeam{}
	}
	return game.Round{
		Phase:    game.RoundIntro,
		Drawers:  drawers,
		Chooser:  drawers[g.rng.Intn(len(drawers))],
		EasyWord: easy,
		HardWord: hard,
		Teams:    teams,
	}
}

// selectDrawers picks one drawer per team: uniformly among the team's
// ready-and-connected members, falling back to all members so every
// team always gets exactly one drawer.
func (g *Game) selectDrawers() []game.PlayerID {
	var drawers []game.PlayerID
	for _, tid := range g.state.TeamIDs() {
		t := g.state.Teams[tid]
		members := make([]game.PlayerID, 0, len(t.Players))
		for id := range t.Players {
			members = append(members, id)
		}
		slices.Sort(members)

		var eligible []game.PlayerID
		for _, id := range members {
			if p := g.state.Player(id); p != nil && p.Ready && p.Connected {
				eligible = append(eligible, id)
			}
		}
		if len(eligible) == 0 {
			eligible = members
		}
		drawers = append(drawers, eligible[g.rng.Intn(len(eligible))])
	}
	return drawers
}
