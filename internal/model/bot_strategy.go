package model

// Bot strategy constants
const (
	BotStrategyPolicy = "policy"
	BotStrategySearch = "search"
	BotStrategyRandom = "random"
)

// BotStrategyDisplayName returns a human-readable label for a strategy
func BotStrategyDisplayName(strategy string) string {
	switch strategy {
	case BotStrategyPolicy:
		return "Trained policy"
	case BotStrategySearch:
		return "Lookahead search"
	case BotStrategyRandom:
		return "Random"
	default:
		return strategy
	}
}

// ValidBotStrategies returns all valid bot strategy names
func ValidBotStrategies() []string {
	return []string{BotStrategyPolicy, BotStrategySearch, BotStrategyRandom}
}

// IsValidBotStrategy reports whether name is a known strategy
func IsValidBotStrategy(name string) bool {
	for _, s := range ValidBotStrategies() {
		if s == name {
			return true
		}
	}
	return false
}
