package ledger

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	TypeUser    = "user_transaction"
	TypePending = "pending_transaction"
)

type Transaction struct {
	Version        uint64         `json:"version"`
	Hash           string         `json:"hash"`
	Type           string         `json:"type"`
	Sender         string         `json:"sender,omitempty"`
	SequenceNumber uint64         `json:"sequence_number"`
	MaxGasAmount   uint64         `json:"max_gas_amount"`
	GasUsed        uint64         `json:"gas_used"`
	Success        bool           `json:"success"`
	VMStatus       string         `json:"vm_status,omitempty"`
	Payload        *EntryFunction `json:"payload,omitempty"`
	Timestamp      uint64         `json:"timestamp"`
}

// IsEntryFunction reports whether the transaction is a user transaction
// invoking an entry function, the only kind that can be replayed.
func (t *Transaction) IsEntryFunction() bool {
	return t.Type == TypeUser && t.Payload != nil && t.Payload.Function != ""
}

type EntryFunction struct {
	Function      string          `json:"function"`
	TypeArguments []string        `json:"type_arguments"`
	Arguments     json.RawMessage `json:"arguments"`
}

// ModuleID returns "addr::module" of the called function.
func (e *EntryFunction) ModuleID() string {
	i := strings.LastIndex(e.Function, "::")
	if i < 0 {
		return ""
	}
	return e.Function[:i]
}

func (e *EntryFunction) FunctionName() string {
	i := strings.LastIndex(e.Function, "::")
	if i < 0 {
		return e.Function
	}
	return e.Function[i+2:]
}

type PackageRegistry struct {
	Packages []PackageMetadata `json:"packages"`
}

type PackageMetadata struct {
	Name          string           `json:"name"`
	UpgradeNumber U64              `json:"upgrade_number"`
	SourceDigest  string           `json:"source_digest"`
	Modules       []ModuleMetadata `json:"modules"`
	Deps          []PackageDep     `json:"deps"`
}

// ModuleMetadata carries the gzip compressed source and source map of one module.
type ModuleMetadata struct {
	Name      string        `json:"name"`
	Source    hexutil.Bytes `json:"source"`
	SourceMap hexutil.Bytes `json:"source_map"`
}

type PackageDep struct {
	Account     string `json:"account"`
	PackageName string `json:"package_name"`
}

// FindModule returns the package holding module name, if any.
func (r *PackageRegistry) FindModule(name string) (*PackageMetadata, *ModuleMetadata) {
	if r == nil {
		return nil, nil
	}
	for i := range r.Packages {
		pkg := &r.Packages[i]
		for j := range pkg.Modules {
			if pkg.Modules[j].Name == name {
				return pkg, &pkg.Modules[j]
			}
		}
	}
	return nil, nil
}

// U64 decodes the REST API's stringified integers. Plain numbers are accepted too.
type U64 uint64

func (u U64) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatUint(uint64(u), 10))
}

func (u *U64) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("ledger: invalid u64 %q: %w", string(b), err)
	}
	*u = U64(v)
	return nil
}
