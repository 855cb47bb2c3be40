package app

import "errors"

var (
	// ErrSessionFinished is returned for any command against a session that
	// already reached the finished phase. No state is mutated.
	ErrSessionFinished = errors.New("session already finished")
	// ErrWrongPhase is returned when a command is issued in a phase where it
	// does not apply, e.g. starting an already active game. No state is mutated.
	ErrWrongPhase = errors.New("command not valid in current phase")
	// ErrAlreadyJoined is returned when a player joins a lobby twice.
	ErrAlreadyJoined = errors.New("player already joined")
	// ErrTooFewPlayers is returned by Start when the lobby is below the minimum.
	ErrTooFewPlayers = errors.New("not enough players to start")
	// ErrUnknownPlayer is returned when the acting player is not in the session.
	ErrUnknownPlayer = errors.New("player not found")
	// ErrNotYourTurn is returned for submissions by anyone but the current
	// player. These carry no strike; the chat layer simply ignores bystanders.
	ErrNotYourTurn = errors.New("not this player's turn")
	// ErrEmptySubmission is returned when a candidate normalizes to nothing.
	ErrEmptySubmission = errors.New("empty submission")
	// ErrDeadLetter is returned, only when dead letters are forbidden, for a
	// move whose terminal letter has no remaining continuation. It carries no
	// strike and the turn does not advance.
	ErrDeadLetter = errors.New("name ends on a dead letter")
)
