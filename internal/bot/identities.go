package bot

import (
	"fmt"
	"strings"
)

// botIDPrefix marks player ids that belong to bot agents. They never collide
// with chat-platform user ids, which have no colon.
const botIDPrefix = "bot:"

var botNames = []string{
	"Vasco",
	"Magellan",
	"Ibn Battuta",
	"Amelia",
	"Marco Polo",
	"Nellie",
	"Zheng He",
	"Tereshkova",
}

// BotIdentity is a display identity assigned to a bot seat.
type BotIdentity struct {
	UserID      string
	DisplayName string
}

// GetBotIdentity returns a deterministic identity for the nth bot in a session.
func GetBotIdentity(n int) BotIdentity {
	name := botNames[n%len(botNames)]
	return BotIdentity{
		UserID:      fmt.Sprintf("%s%d", botIDPrefix, n),
		DisplayName: name,
	}
}

// IsBot reports whether the given player id represents a bot.
func IsBot(playerID string) bool {
	return strings.HasPrefix(playerID, botIDPrefix)
}
