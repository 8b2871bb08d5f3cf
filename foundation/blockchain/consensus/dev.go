package consensus

import (
	"context"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
)

// Development accepts any structurally valid header. It's used for local
// networks and tests where no work should be required.
type Development struct{}

// NewDev constructs the development strategy.
func NewDev() Development {
	return Development{}
}

// Name returns the name of the strategy.
func (Development) Name() string {
	return Dev
}

// Difficulty is always zero for development blocks.
func (Development) Difficulty(parent database.BlockHeader) uint16 {
	return 0
}

// ValidateHeader accepts every header.
func (Development) ValidateHeader(header database.BlockHeader, parent database.BlockHeader) error {
	return nil
}

// Seal returns the header as is.
func (Development) Seal(ctx context.Context, header database.BlockHeader, ev EventHandler) (database.BlockHeader, error) {
	return header, nil
}
