package redis

import (
	"fmt"
)

// Key prefix for all spreadgame data
const keyPrefix = "spreadgame"

// policyKey returns the Redis key for a policy checkpoint
func policyKey(slot int) string {
	return fmt.Sprintf("%s:policy:%d", keyPrefix, slot)
}

// policyIndexKey returns the Redis key for the SET of saved slots
func policyIndexKey() string {
	return fmt.Sprintf("%s:idx:policies", keyPrefix)
}
