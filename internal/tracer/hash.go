package tracer

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var ErrInvalidHash = errors.New("tracer: invalid transaction hash")

// ParseHash accepts a 32 byte hex hash with or without 0x and returns it in
// lowercase 0x form.
func ParseHash(s string) (string, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != 2*common.HashLength {
		return "", ErrInvalidHash
	}
	b, err := hexutil.Decode("0x" + s)
	if err != nil {
		return "", ErrInvalidHash
	}
	return common.BytesToHash(b).Hex(), nil
}
