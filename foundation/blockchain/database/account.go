package database

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Set of accounts the system uses as the sender of the transactions it
// creates. These are not hex addresses and can't sign anything.
const (
	GenesisAccount       Address = "genesis"
	RewardAccount        Address = "ledger-rewards"
	MiningPaymentAccount Address = "ledger-miningpayment"
)

// ErrMalformedAddress is returned when a string is not a hex-encoded address.
var ErrMalformedAddress = errors.New("invalid address format")

// =============================================================================

// Address represents a case folded account address that is associated with
// transactions on the blockchain.
type Address string

// ToAddress converts a hex-encoded string to an address and validates the
// hex-encoded string is formatted correctly.
func ToAddress(hex string) (Address, error) {
	hex = strings.TrimSpace(hex)
	if !has0xPrefix(hex) || !common.IsHexAddress(hex) {
		return "", ErrMalformedAddress
	}

	return Normalize(hex), nil
}

// Normalize case folds the string into an address without validating it.
// System accounts go through here since they are not hex addresses.
func Normalize(s string) Address {
	return Address(strings.ToLower(strings.TrimSpace(s)))
}

// IsAddress verifies whether the underlying data represents a valid
// hex-encoded address.
func (a Address) IsAddress() bool {
	return has0xPrefix(string(a)) && common.IsHexAddress(string(a))
}

// String implements the fmt.Stringer interface.
func (a Address) String() string {
	return string(a)
}

// =============================================================================

// has0xPrefix validates the address starts with a 0x.
func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
