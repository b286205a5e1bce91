package planner

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// RouteKey derives the stable identity of an address pair. The key is
// direction-sensitive (home to work and work to home accumulate separate
// histories) and survives casing and whitespace differences in input.
func RouteKey(startAddress, endAddress string) string {
	norm := func(s string) string {
		return strings.ToLower(strings.Join(strings.Fields(s), " "))
	}
	sum := sha256.Sum256([]byte(norm(startAddress) + "|" + norm(endAddress)))
	return hex.EncodeToString(sum[:8])
}
