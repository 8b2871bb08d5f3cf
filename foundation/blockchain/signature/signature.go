// Package signature provides helper functions for handling the blockchain
// signature and hashing needs.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// recoveryOffset is added to the recovery id of every signature so a
// signature produced for this chain can't be replayed as an Ethereum one.
const recoveryOffset = 29

// stampPrefix is hashed together with the data before signing.
const stampPrefix = "\x19Forkchain Signed Message:\n32"

// =============================================================================

// Hash returns a unique string for the value. The value is marshaled to JSON
// so struct field order defines the canonical form.
func Hash(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ZeroHash
	}

	hash := sha256.Sum256(data)
	return hexutil.Encode(hash[:])
}

// HashBytes decodes a hash string produced by Hash back into its raw bytes.
func HashBytes(hash string) ([]byte, error) {
	b, err := hexutil.Decode(hash)
	if err != nil {
		return nil, fmt.Errorf("decode hash %q: %w", hash, err)
	}
	return b, nil
}

// Sign uses the specified private key to sign the value.
func Sign(value any, privateKey *ecdsa.PrivateKey) (v, r, s *big.Int, err error) {
	data, err := stamp(value)
	if err != nil {
		return nil, nil, nil, err
	}

	sig, err := crypto.Sign(data, privateKey)
	if err != nil {
		return nil, nil, nil, err
	}

	// Recover the public key to prove the signature before handing it out.
	publicKey, err := crypto.SigToPub(data, sig)
	if err != nil {
		return nil, nil, nil, err
	}

	if !crypto.VerifySignature(crypto.FromECDSAPub(publicKey), data, sig[:crypto.RecoveryIDOffset]) {
		return nil, nil, nil, errors.New("invalid signature")
	}

	v, r, s = toSignatureValues(sig)

	return v, r, s, nil
}

// VerifySignature checks the signature values are well formed.
func VerifySignature(v, r, s *big.Int) error {
	if v == nil || r == nil || s == nil {
		return errors.New("missing signature values")
	}

	uintV := v.Uint64() - recoveryOffset
	if uintV != 0 && uintV != 1 {
		return errors.New("invalid recovery id")
	}

	if !crypto.ValidateSignatureValues(byte(uintV), r, s, false) {
		return errors.New("invalid signature values")
	}

	return nil
}

// FromAddress extracts the address for the account that signed the value.
// If the value is not byte for byte what was signed, a different address
// is recovered; the node can't detect that on its own.
func FromAddress(value any, v, r, s *big.Int) (string, error) {
	if err := VerifySignature(v, r, s); err != nil {
		return "", err
	}

	data, err := stamp(value)
	if err != nil {
		return "", err
	}

	publicKey, err := crypto.SigToPub(data, ToSignatureBytes(v, r, s))
	if err != nil {
		return "", err
	}

	return crypto.PubkeyToAddress(*publicKey).String(), nil
}

// SignatureString returns the signature as a hex string with the recovery
// offset kept in the last byte.
func SignatureString(v, r, s *big.Int) string {
	sig := ToSignatureBytes(v, r, s)
	sig[64] = byte(v.Uint64())

	return hexutil.Encode(sig)
}

// ToSignatureBytes converts the r, s, v values into the 65 byte [R|S|V]
// format with the recovery offset removed.
func ToSignatureBytes(v, r, s *big.Int) []byte {
	sig := make([]byte, crypto.SignatureLength)

	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:64])
	sig[64] = byte(v.Uint64() - recoveryOffset)

	return sig
}

// =============================================================================

// stamp returns a 32 byte hash of the value with the chain stamp embedded.
func stamp(value any) ([]byte, error) {
	v, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	return crypto.Keccak256([]byte(stampPrefix), crypto.Keccak256(v)), nil
}

// toSignatureValues converts the signature into the r, s, v values.
func toSignatureValues(sig []byte) (v, r, s *big.Int) {
	r = new(big.Int).SetBytes(sig[:32])
	s = new(big.Int).SetBytes(sig[32:64])
	v = new(big.Int).SetBytes([]byte{sig[64] + recoveryOffset})

	return v, r, s
}
