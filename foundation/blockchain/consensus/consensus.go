// Package consensus provides the header validation strategies a branch
// delegates to when it applies a block.
package consensus

import (
	"context"
	"fmt"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
)

// Set of consensus strategies a node can be configured with.
const (
	POW = "POW"
	Dev = "DEV"
)

// EventHandler defines a function that is called when events occur in the
// processing of consensus work.
type EventHandler func(v string, args ...any)

// Consensus represents the behavior required to validate and seal block
// headers for a given consensus algorithm.
type Consensus interface {
	Name() string
	Difficulty(parent database.BlockHeader) uint16
	ValidateHeader(header database.BlockHeader, parent database.BlockHeader) error
	Seal(ctx context.Context, header database.BlockHeader, ev EventHandler) (database.BlockHeader, error)
}

// Retrieve returns the consensus strategy for the specified name.
func Retrieve(name string, difficulty uint16) (Consensus, error) {
	switch name {
	case POW:
		return NewPOW(difficulty), nil
	case Dev:
		return NewDev(), nil
	}

	return nil, fmt.Errorf("consensus %q does not exist", name)
}
