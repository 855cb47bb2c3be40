package app

// DefaultMinPlayers is the minimum lobby size required to start a game.
// Keep this centralized so tests or local runs can adjust the rule without touching multiple call sites.
const DefaultMinPlayers = 2

// DefaultMaxStrikes is the number of strikes that eliminates a player.
const DefaultMaxStrikes = 2
