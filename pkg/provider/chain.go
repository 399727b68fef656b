package provider

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ChainID identifies a chain as a canonical lowercase 0x-prefixed hexadecimal
// string ("0x1" for mainnet). The zero value means "no chain".
//
// ChainIDs are immutable; equality is plain string comparison on the
// canonical form, so always construct them through NewChainID or
// ChainIDFromUint64 rather than by casting raw input.
type ChainID string

// NewChainID parses and canonicalizes a hexadecimal chain identifier.
// Input must be 0x-prefixed hex encoding a non-negative integer; the result
// is normalized to lowercase with no leading zero digits.
func NewChainID(s string) (ChainID, error) {
	n, err := hexutil.DecodeBig(strings.ToLower(s))
	if err != nil {
		return "", fmt.Errorf("invalid chain id %q: %w", s, err)
	}
	if n.Sign() < 0 {
		return "", fmt.Errorf("invalid chain id %q: negative value", s)
	}
	return ChainID(hexutil.EncodeBig(n)), nil
}

// ChainIDFromUint64 builds a canonical ChainID from a numeric identifier.
func ChainIDFromUint64(v uint64) ChainID {
	return ChainID(hexutil.EncodeUint64(v))
}

// String returns the canonical hex form.
func (c ChainID) String() string { return string(c) }

// IsZero reports whether no chain is set.
func (c ChainID) IsZero() bool { return c == "" }

// AccountSet is the ordered sequence of account addresses currently
// authorized for the application. Order is preserved verbatim in
// accountsChanged payloads; any sequence difference (addition, removal,
// reordering) counts as a change.
type AccountSet []string

// Equal reports whether both sequences are identical, element for element.
func (a AccountSet) Equal(other AccountSet) bool {
	if len(a) != len(other) {
		return false
	}
	for i := range a {
		if a[i] != other[i] {
			return false
		}
	}
	return true
}

// Contains reports whether addr is in the set. Addresses are compared
// case-insensitively since mixed-case checksummed forms denote the same
// account.
func (a AccountSet) Contains(addr string) bool {
	for _, acct := range a {
		if strings.EqualFold(acct, addr) {
			return true
		}
	}
	return false
}

// Clone returns an independent copy of the set.
func (a AccountSet) Clone() AccountSet {
	if a == nil {
		return nil
	}
	out := make(AccountSet, len(a))
	copy(out, a)
	return out
}
