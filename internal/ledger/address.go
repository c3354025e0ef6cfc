package ledger

import (
	"fmt"
	"strings"

	aptos "github.com/aptos-labs/aptos-go-sdk"
)

// NormalizeAddress parses an account address in any accepted form and returns
// its canonical rendering (short for special addresses like 0x1, long otherwise).
func NormalizeAddress(addr string) (string, error) {
	var a aptos.AccountAddress
	if err := a.ParseStringRelaxed(strings.TrimSpace(addr)); err != nil {
		return "", fmt.Errorf("ledger: invalid address %q: %w", addr, err)
	}
	return a.String(), nil
}
