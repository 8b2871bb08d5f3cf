// Package merkle computes merkle roots and inclusion proofs over ordered
// lists of hashable values. An odd node at any level is paired with itself.
package merkle

import (
	"bytes"
	"crypto/sha256"
	"errors"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Hashable represents the behavior a value must exhibit to be placed
// in a merkle tree.
type Hashable interface {
	Hash() ([]byte, error)
}

// Proof orders tell a verifier on which side the proof hash is concatenated.
const (
	ProofLeft  int64 = 0
	ProofRight int64 = 1
)

// =============================================================================

// Leafs returns the leaf hashes for the specified values.
func Leafs[T Hashable](values []T) ([][]byte, error) {
	leafs := make([][]byte, len(values))
	for i, value := range values {
		h, err := value.Hash()
		if err != nil {
			return nil, err
		}
		leafs[i] = h
	}

	return leafs, nil
}

// Root calculates the merkle root for the set of leaf hashes. An empty
// set of leafs produces a nil root.
func Root(leafs [][]byte) []byte {
	if len(leafs) == 0 {
		return nil
	}

	level := leafs
	for len(level) > 1 {
		level = nextLevel(level)
	}

	return level[0]
}

// RootHex calculates the merkle root for the values and returns it as a
// hex encoded string. An empty set of values returns the empty string.
func RootHex[T Hashable](values []T) (string, error) {
	leafs, err := Leafs(values)
	if err != nil {
		return "", err
	}

	root := Root(leafs)
	if root == nil {
		return "", nil
	}

	return hexutil.Encode(root), nil
}

// Proof returns the set of hashes and the order of concatenating them that
// proves the leaf at the specified index is part of the tree.
//
// To verify, start with the leaf hash. For each proof hash, concatenate it
// first when the order is ProofLeft or second when the order is ProofRight,
// and hash the result. The final hash must equal the merkle root.
func Proof(leafs [][]byte, index int) ([][]byte, []int64, error) {
	if index < 0 || index >= len(leafs) {
		return nil, nil, errors.New("leaf index out of range")
	}

	var proof [][]byte
	var order []int64

	level := leafs
	for len(level) > 1 {
		sibling := index ^ 1
		if sibling >= len(level) {
			sibling = index
		}

		switch {
		case index%2 == 0:
			proof = append(proof, level[sibling])
			order = append(order, ProofRight)
		default:
			proof = append(proof, level[sibling])
			order = append(order, ProofLeft)
		}

		level = nextLevel(level)
		index /= 2
	}

	return proof, order, nil
}

// Verify checks the proof for the leaf against the merkle root.
func Verify(leaf []byte, proof [][]byte, order []int64, root []byte) error {
	if len(proof) != len(order) {
		return errors.New("proof and order length mismatch")
	}

	h := leaf
	for i, p := range proof {
		switch order[i] {
		case ProofLeft:
			h = hashPair(p, h)
		default:
			h = hashPair(h, p)
		}
	}

	if !bytes.Equal(h, root) {
		return errors.New("calculated root does not match merkle root")
	}

	return nil
}

// =============================================================================

// nextLevel hashes the nodes of one level in pairs to build the level above.
func nextLevel(level [][]byte) [][]byte {
	next := make([][]byte, 0, (len(level)+1)/2)
	for i := 0; i < len(level); i += 2 {
		right := i + 1
		if right == len(level) {
			right = i
		}
		next = append(next, hashPair(level[i], level[right]))
	}

	return next
}

// hashPair hashes the concatenation of the two hashes.
func hashPair(left, right []byte) []byte {
	h := sha256.New()
	h.Write(left)
	h.Write(right)

	return h.Sum(nil)
}
