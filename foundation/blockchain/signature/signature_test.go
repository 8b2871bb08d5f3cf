package signature_test

import (
	"math/big"
	"testing"

	"github.com/ardanlabs/forkchain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	from     = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"
)

// =============================================================================

func Test_Signing(t *testing.T) {
	value := struct {
		Name string
	}{
		Name: "Bill",
	}

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	v, r, s, err := signature.Sign(value, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	if err := signature.VerifySignature(v, r, s); err != nil {
		t.Fatalf("Should be able to verify the signature: %s", err)
	}

	addr, err := signature.FromAddress(value, v, r, s)
	if err != nil {
		t.Fatalf("Should be able to generate from address: %s", err)
	}

	if from != addr {
		t.Logf("got: %s", addr)
		t.Logf("exp: %s", from)
		t.Fatalf("Should get back the right address.")
	}

	str := signature.SignatureString(v, r, s)
	if len(str) != 2+2*crypto.SignatureLength {
		t.Logf("got: %d", len(str))
		t.Fatalf("Should get back a 65 byte hex signature.")
	}
}

func Test_BadRecoveryID(t *testing.T) {
	if err := signature.VerifySignature(big.NewInt(27), big.NewInt(1), big.NewInt(1)); err == nil {
		t.Fatalf("Should reject a signature without the recovery offset.")
	}

	if err := signature.VerifySignature(nil, nil, nil); err == nil {
		t.Fatalf("Should reject missing signature values.")
	}
}

func Test_Hash(t *testing.T) {
	bill := struct {
		Name string
	}{
		Name: "Bill",
	}
	jill := struct {
		Name string
	}{
		Name: "Jill",
	}

	h := signature.Hash(bill)
	if len(h) != 66 || h == signature.ZeroHash {
		t.Fatalf("Should get back a 32 byte hex hash: %s", h)
	}

	if h2 := signature.Hash(bill); h2 != h {
		t.Logf("got: %s", h2)
		t.Logf("exp: %s", h)
		t.Fatalf("Should get back the same hash twice.")
	}

	if signature.Hash(jill) == h {
		t.Fatalf("Should get back a different hash for different values.")
	}

	b, err := signature.HashBytes(h)
	if err != nil {
		t.Fatalf("Should be able to decode the hash: %s", err)
	}
	if len(b) != 32 {
		t.Fatalf("Should decode into 32 bytes, got %d", len(b))
	}
}

func Test_SignConsistency(t *testing.T) {
	value1 := struct {
		Name string
	}{
		Name: "Bill",
	}
	value2 := struct {
		Name string
	}{
		Name: "Jill",
	}

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	v1, r1, s1, err := signature.Sign(value1, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	addr1, err := signature.FromAddress(value1, v1, r1, s1)
	if err != nil {
		t.Fatalf("Should be able to generate an address: %s", err)
	}

	v2, r2, s2, err := signature.Sign(value2, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	addr2, err := signature.FromAddress(value2, v2, r2, s2)
	if err != nil {
		t.Fatalf("Should be able to generate an address: %s", err)
	}

	if addr1 != addr2 {
		t.Errorf("Got: %s", addr1)
		t.Errorf("Got: %s", addr2)
		t.Fatalf("Should have the same address.")
	}
}
