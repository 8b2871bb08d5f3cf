package merkle_test

import (
	"crypto/sha256"
	"fmt"
	"testing"

	"github.com/ardanlabs/forkchain/foundation/blockchain/merkle"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type data struct {
	x string
}

func (d data) Hash() ([]byte, error) {
	h := sha256.Sum256([]byte(d.x))
	return h[:], nil
}

func values(n int) []data {
	v := make([]data, n)
	for i := range v {
		v[i] = data{x: fmt.Sprintf("value-%d", i)}
	}
	return v
}

// =============================================================================

func TestRoot(t *testing.T) {
	t.Log("Given the need to calculate merkle roots.")
	{
		root, err := merkle.RootHex([]data{})
		if err != nil || root != "" {
			t.Fatalf("\t%s\tShould get an empty root for no values: %q %v", failed, root, err)
		}
		t.Logf("\t%s\tShould get an empty root for no values.", success)

		one := values(1)
		leafs, _ := merkle.Leafs(one)
		if got := merkle.Root(leafs); string(got) != string(leafs[0]) {
			t.Fatalf("\t%s\tShould get the leaf hash as root for a single value.", failed)
		}
		t.Logf("\t%s\tShould get the leaf hash as root for a single value.", success)

		r1, _ := merkle.RootHex(values(5))
		r2, _ := merkle.RootHex(values(5))
		if r1 != r2 {
			t.Fatalf("\t%s\tShould get the same root for the same values.", failed)
		}
		t.Logf("\t%s\tShould get the same root for the same values.", success)

		v := values(5)
		v[0], v[1] = v[1], v[0]
		r3, _ := merkle.RootHex(v)
		if r3 == r1 {
			t.Fatalf("\t%s\tShould get a different root when order changes.", failed)
		}
		t.Logf("\t%s\tShould get a different root when order changes.", success)
	}
}

func TestProof(t *testing.T) {
	t.Log("Given the need to prove a value is in the tree.")
	{
		for _, n := range []int{1, 2, 3, 4, 7, 8, 13} {
			t.Logf("\tWhen the tree holds %d values.", n)
			{
				leafs, err := merkle.Leafs(values(n))
				if err != nil {
					t.Fatalf("\t%s\tShould be able to hash values: %v", failed, err)
				}
				root := merkle.Root(leafs)

				for i := range leafs {
					proof, order, err := merkle.Proof(leafs, i)
					if err != nil {
						t.Fatalf("\t%s\tShould be able to build proof %d: %v", failed, i, err)
					}

					if err := merkle.Verify(leafs[i], proof, order, root); err != nil {
						t.Fatalf("\t%s\tShould be able to verify proof %d: %v", failed, i, err)
					}
				}
				t.Logf("\t%s\tShould be able to verify every leaf.", success)

				bad := sha256.Sum256([]byte("bad"))
				proof, order, _ := merkle.Proof(leafs, 0)
				if err := merkle.Verify(bad[:], proof, order, root); err == nil && n > 0 {
					t.Fatalf("\t%s\tShould reject a leaf that is not in the tree.", failed)
				}
				t.Logf("\t%s\tShould reject a leaf that is not in the tree.", success)
			}
		}

		if _, _, err := merkle.Proof(nil, 0); err == nil {
			t.Fatalf("\t%s\tShould reject an out of range index.", failed)
		}
		t.Logf("\t%s\tShould reject an out of range index.", success)
	}
}
