package model

import "time"

// GameID uniquely identifies a game, assigned at durable record creation
type GameID string

// Participant is one side of a session: a connected human identified by
// player ID, or the automated opponent (which holds no connection).
type Participant struct {
	Player PlayerID // empty when Bot is true
	Bot    bool
}

// HumanParticipant wraps a player ID as a session participant
func HumanParticipant(id PlayerID) Participant {
	return Participant{Player: id}
}

// BotParticipant is the automated opponent side
func BotParticipant() Participant {
	return Participant{Bot: true}
}

// GameSession is a live game between two participants. Sides are fixed
// at creation; Turn alternates strictly after every accepted move. A
// session whose board evaluates to a decisive result is retired
// immediately, so a live session never holds a terminal board.
type GameSession struct {
	ID      GameID
	Board   Board
	PlayerX Participant
	PlayerO Participant
	Turn    Mark
	VsBot   bool

	CreatedAt time.Time
}

// ParticipantFor returns the participant occupying the given side
func (s *GameSession) ParticipantFor(m Mark) Participant {
	if m == X {
		return s.PlayerX
	}
	return s.PlayerO
}

// SideOf returns the mark held by the given player, or Empty if the
// player is not a participant.
func (s *GameSession) SideOf(id PlayerID) Mark {
	if !s.PlayerX.Bot && s.PlayerX.Player == id {
		return X
	}
	if !s.PlayerO.Bot && s.PlayerO.Player == id {
		return O
	}
	return Empty
}

// BotSide returns the mark held by the automated opponent, or Empty in
// a two-human session.
func (s *GameSession) BotSide() Mark {
	if s.PlayerX.Bot {
		return X
	}
	if s.PlayerO.Bot {
		return O
	}
	return Empty
}

// GameRecord is the durable record of a game for history listings
type GameRecord struct {
	ID        GameID
	PlayerX   PlayerID // "bot" pseudo-name is never stored; empty for the automated side
	PlayerO   PlayerID
	Result    Result
	CreatedAt time.Time
}

// OpponentOf returns the other player's name in this record, or "bot"
// when the other side was automated.
func (r GameRecord) OpponentOf(id PlayerID) string {
	if r.PlayerX == id {
		if r.PlayerO == "" {
			return "bot"
		}
		return string(r.PlayerO)
	}
	if r.PlayerX == "" {
		return "bot"
	}
	return string(r.PlayerX)
}

// OutcomeFor describes the result from the given player's perspective
func (r GameRecord) OutcomeFor(id PlayerID) string {
	switch r.Result {
	case ResultDraw:
		return "draw"
	case ResultNone:
		return "unfinished"
	case ResultXWins:
		if r.PlayerX == id {
			return "won"
		}
		return "lost"
	case ResultOWins:
		if r.PlayerO == id {
			return "won"
		}
		return "lost"
	}
	return string(r.Result)
}
