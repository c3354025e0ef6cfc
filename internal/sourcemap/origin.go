package sourcemap

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/klauspost/compress/gzip"
)

// Origin declares how artifact bytes were produced. The transform applied
// before decoding is picked from the origin, never from the content.
type Origin uint8

const (
	// OriginRaw bytes are already the binary encoding.
	OriginRaw Origin = iota
	// OriginRegistry bytes come from an on-chain package registry and are gzip compressed.
	OriginRegistry
	// OriginRemote bytes come from the compile service as hex text, 0x prefix optional.
	OriginRemote
)

func (o Origin) String() string {
	switch o {
	case OriginRaw:
		return "raw"
	case OriginRegistry:
		return "registry"
	case OriginRemote:
		return "remote"
	default:
		return fmt.Sprintf("origin(%d)", uint8(o))
	}
}

var ErrDecode = errors.New("sourcemap: decode failed")

// Prepare turns artifact source-map bytes into the binary encoding accepted by Decode.
func Prepare(raw []byte, origin Origin) ([]byte, error) {
	switch origin {
	case OriginRaw:
		return raw, nil
	case OriginRegistry:
		return gunzip(raw)
	case OriginRemote:
		return decodeHex(string(raw))
	default:
		return nil, fmt.Errorf("%w: unknown origin %s", ErrDecode, origin)
	}
}

// PrepareSource returns the module source text. Registry sources are gzip
// compressed like their source maps; remote sources are plain text.
func PrepareSource(raw []byte, origin Origin) (string, error) {
	if origin == OriginRegistry {
		text, err := gunzip(raw)
		if err != nil {
			return "", err
		}
		return string(text), nil
	}
	return string(raw), nil
}

func gunzip(raw []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: gzip header: %v", ErrDecode, err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: gzip body: %v", ErrDecode, err)
	}
	return out, nil
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	} else {
		s = "0x" + s[2:]
	}
	out, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: hex: %v", ErrDecode, err)
	}
	return out, nil
}

// Compress gzips raw bytes the way the package registry stores metadata.
func Compress(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
