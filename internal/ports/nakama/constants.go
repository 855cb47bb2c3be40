package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// MatchNameAtlas is the authoritative match handler name registered with Nakama.
	MatchNameAtlas = "atlas_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame  int64 = 1
	OpSubmitName int64 = 2
	OpAddBot     int64 = 3
	OpCancelGame int64 = 4

	// Server -> Client events
	OpPlayerJoined     int64 = 101
	OpPlayerLeft       int64 = 102
	OpGameStarted      int64 = 103
	OpTurnPrompt       int64 = 104
	OpMoveAccepted     int64 = 105
	OpMoveRejected     int64 = 106
	OpPlayerEliminated int64 = 107
	OpGameOver         int64 = 108
	OpGameError        int64 = 110
)
