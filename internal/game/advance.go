package game

// CanAdvance reports whether event may legally be applied to state. It
// is the single guard for both sides of the wire: the server gates
// every event with it before Advance, and optimistic clients use it to
// drop events the server will also drop. Guards are conservative; an
// event that would be a no-op is rejected rather than applied.
func CanAdvance(s *GameState, event Event) bool {
	switch e := event.(type) {
	case Join:
		// only players who aren't already in the game may join
		return s.Players[e.ID] == nil
	case Left:
		// full removal only before the game starts and before the
		// player has scored
		p := s.Players[e.ID]
		return p != nil && p.Score == 0 && s.Phase == PhasePreGame
	case IncPlayerScore:
		return s.Players[e.ID] != nil && e.Score > 0
	case ChangePlayerName:
		p := s.Players[e.ID]
		return p != nil && p.Name != e.Name
	case JoinTeam:
		p := s.Players[e.ID]
		return p != nil && p.Team != e.Team
	case Ready:
		p := s.Players[e.ID]
		if p == nil || p.Ready {
			return false
		}
		if s.Phase == PhasePreGame {
			return true
		}
		r := s.CurrentRound()
		return r != nil && r.Phase == RoundPostRound
	case Reconnect:
		p := s.Players[e.ID]
		return p != nil && !p.Connected
	case Disconnect:
		p := s.Players[e.ID]
		return p != nil && p.Connected
	case Timer:
		return true
	case NewRound:
		return s.Round < s.Rules.MaxRoundID()
	case RoundPhaseChange:
		r := s.CurrentRound()
		return r != nil && r.Phase != e.Phase
	case GamePhaseChange:
		return s.Phase != e.Phase
	case Choose:
		// chooser identity is enforced by the permission layer
		r := s.CurrentRound()
		if r == nil || r.Word != "" {
			return false
		}
		return e.Difficulty == DifficultyEasy || e.Difficulty == DifficultyHard
	}
	return false
}

// Advance applies event to state. It assumes the event has already been
// validated with CanAdvance and does no checking of its own.
func Advance(s *GameState, event Event) {
	switch e := event.(type) {
	case Join:
		s.Players[e.ID] = &GamePlayer{
			ID:        e.ID,
			Name:      e.Name,
			Team:      e.Team,
			Connected: true,
			Role:      RoleGuesser,
		}
		addToTeam(s, e.ID, e.Team)
	case Left:
		removeFromTeam(s, e.ID, s.Players[e.ID].Team)
		delete(s.Players, e.ID)
	case IncPlayerScore:
		p := s.Players[e.ID]
		p.Score += e.Score
		if t := s.Teams[p.Team]; t != nil {
			t.Score += e.Score
		}
	case ChangePlayerName:
		s.Players[e.ID].Name = e.Name
	case JoinTeam:
		p := s.Players[e.ID]
		removeFromTeam(s, e.ID, p.Team)
		addToTeam(s, e.ID, e.Team)
		p.Team = e.Team
	case Ready:
		s.Players[e.ID].Ready = true
	case Reconnect:
		s.Players[e.ID].Connected = true
	case Disconnect:
		s.Players[e.ID].Connected = false
	case Timer:
		s.Timer = e.Deadline
	case NewRound:
		s.Rounds = append(s.Rounds, e.Round.Clone())
		s.Round++
		for _, p := range s.Players {
			p.Ready = false
			if e.Round.HasDrawer(p.ID) {
				p.Role = RoleDrawer
			} else {
				p.Role = RoleGuesser
			}
		}
		s.Timer = 0
	case RoundPhaseChange:
		s.CurrentRound().Phase = e.Phase
		s.Timer = 0
	case GamePhaseChange:
		s.Phase = e.Phase
		for _, p := range s.Players {
			p.Ready = false
			p.Role = RoleGuesser
		}
		s.Timer = 0
	case Choose:
		r := s.CurrentRound()
		if e.Difficulty == DifficultyHard {
			r.Word = r.HardWord
		} else {
			r.Word = r.EasyWord
		}
		r.Difficulty = e.Difficulty
		r.Multiplier = Multiplier(e.Difficulty)
	}
}

func addToTeam(s *GameState, id PlayerID, team TeamID) {
	t := s.Teams[team]
	if t == nil {
		t = &GameTeam{Players: map[PlayerID]*TeamPlayer{}}
		s.Teams[team] = t
	}
	t.Players[id] = &TeamPlayer{ID: id}
}

// removeFromTeam drops the membership and deletes the team once its
// last member is gone; empty teams must never persist.
func removeFromTeam(s *GameState, id PlayerID, team TeamID) {
	t := s.Teams[team]
	if t == nil {
		return
	}
	delete(t.Players, id)
	if len(t.Players) == 0 {
		delete(s.Teams, team)
	}
}
