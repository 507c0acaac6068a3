// Package signature provides helper functions for handling the blockchain
// hashing and signature needs.
package signature

import (
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"
)

// ZeroHash represents the hash used as the previous hash of the first block.
const ZeroHash string = "0"

// ErrSignatureLength is returned when a signature can't be a recoverable
// [R|S|V] signature.
var ErrSignatureLength = errors.New("unexpected recoverable signature length")

// ErrInvalidSignature is returned when no public key can be recovered from
// the signature and data.
var ErrInvalidSignature = errors.New("invalid signature")

// =============================================================================

// Hash returns a unique string for the value. The value is marshaled to JSON
// so struct field order and sorted map keys keep the result deterministic.
func Hash(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ZeroHash
	}

	return Digest(data)
}

// Digest returns the hex encoded SHA3-256 digest of the data.
func Digest(data []byte) string {
	hash := sha3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// SignText uses the specified private key to sign the text as an EIP-191
// personal message. The signature is returned hex encoded with a V value of
// 27 or 28 like wallets produce.
func SignText(text string, privateKey *ecdsa.PrivateKey) (string, error) {
	sig, err := crypto.Sign(accounts.TextHash([]byte(text)), privateKey)
	if err != nil {
		return "", err
	}

	sig[crypto.RecoveryIDOffset] += 27

	return hexutil.Encode(sig), nil
}

// RecoverText extracts the address for the account that signed the text as
// an EIP-191 personal message. The address is returned lower cased.
func RecoverText(text string, sigStr string) (string, error) {

	// NOTE: If the same exact text for the given signature is not provided
	// we will get the wrong address back. There is no way to check this
	// since we don't have a copy of the public key used. The public key is
	// being extracted from the text and signature.

	sig, err := hexutil.Decode(withPrefix(sigStr))
	if err != nil || len(sig) != crypto.SignatureLength {
		return "", ErrSignatureLength
	}

	// Wallets produce a V of 27 or 28, go-ethereum expects 0 or 1.
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	publicKey, err := crypto.SigToPub(accounts.TextHash([]byte(text)), sig)
	if err != nil {
		return "", ErrInvalidSignature
	}

	return strings.ToLower(crypto.PubkeyToAddress(*publicKey).Hex()), nil
}

// =============================================================================

// withPrefix makes sure the hex string carries the 0x prefix hexutil expects.
func withPrefix(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s
	}

	return "0x" + s
}
