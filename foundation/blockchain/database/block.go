package database

import (
	"fmt"

	"github.com/ardanlabs/forkchain/foundation/blockchain/merkle"
	"github.com/ardanlabs/forkchain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/rlp"
)

// BlockHeader represents common information required for each block.
type BlockHeader struct {
	Number        uint64    `json:"number"`          // Ethereum: Block number in the chain.
	PrevBlockHash string    `json:"prev_block_hash"` // Bitcoin: Hash of the previous block in the chain.
	TimeStamp     uint64    `json:"timestamp"`       // Bitcoin: Time the block was mined.
	BeneficiaryID AccountID `json:"beneficiary"`     // Ethereum: The account who is receiving fees and tips.
	Difficulty    uint16    `json:"difficulty"`      // Ethereum: Number of 0's needed to solve the hash solution.
	MiningReward  uint64    `json:"mining_reward"`   // Ethereum: The reward for mining this block.
	StateRoot     string    `json:"state_root"`      // Ethereum: Represents a hash of the accounts and their balances after this block.
	TransRoot     string    `json:"trans_root"`      // Both: Represents the merkle tree root hash for the transactions in this block.
	Nonce         uint64    `json:"nonce"`           // Both: Value identified to solve the hash solution.
}

// Hash returns the unique id of the block this header belongs to. Only the
// header is hashed, the transactions are committed through the TransRoot.
func (bh BlockHeader) Hash() string {
	return signature.Hash(bh)
}

// IsGenesis reports whether this is the header of the first block.
func (bh BlockHeader) IsGenesis() bool {
	return bh.Number == 0 && bh.PrevBlockHash == signature.ZeroHash
}

// =============================================================================

// Block represents a group of transactions batched together. A block is
// treated as immutable once it's constructed.
type Block struct {
	Header BlockHeader
	Trans  []BlockTx
}

// NewBlock constructs a block and fills in the transaction root.
func NewBlock(header BlockHeader, trans []BlockTx) (Block, error) {
	root, err := TransRoot(trans)
	if err != nil {
		return Block{}, err
	}
	header.TransRoot = root

	b := Block{
		Header: header,
		Trans:  trans,
	}

	return b.normalize(), nil
}

// Hash returns the unique hash for the Block.
func (b Block) Hash() string {
	return b.Header.Hash()
}

// ValidateTransRoot checks the merkle root in the header matches the
// transactions carried by the block.
func (b Block) ValidateTransRoot() error {
	root, err := TransRoot(b.Trans)
	if err != nil {
		return err
	}

	if b.Header.TransRoot != root {
		return fmt.Errorf("merkle root does not match transactions, got %s, exp %s", root, b.Header.TransRoot)
	}

	return nil
}

// normalize makes empty slices nil so a block compares equal to itself
// after a trip through storage.
func (b Block) normalize() Block {
	if len(b.Trans) == 0 {
		b.Trans = nil
		return b
	}

	trans := make([]BlockTx, len(b.Trans))
	for i, tx := range b.Trans {
		if len(tx.Data) == 0 {
			tx.Data = nil
		}
		trans[i] = tx
	}
	b.Trans = trans

	return b
}

// TransRoot calculates the merkle root for the set of transactions. A block
// without transactions carries the ZeroHash.
func TransRoot(trans []BlockTx) (string, error) {
	if len(trans) == 0 {
		return signature.ZeroHash, nil
	}

	return merkle.RootHex(trans)
}

// =============================================================================

// BlockData represents what is sent over the network between nodes and
// returned by the query api.
type BlockData struct {
	Hash   string      `json:"hash"`
	Header BlockHeader `json:"block"`
	Trans  []BlockTx   `json:"trans"`
}

// NewBlockData constructs block data from a block.
func NewBlockData(block Block) BlockData {
	return BlockData{
		Hash:   block.Hash(),
		Header: block.Header,
		Trans:  block.Trans,
	}
}

// ToBlock converts block data into a block and checks the hash the sender
// claimed matches the content.
func ToBlock(bd BlockData) (Block, error) {
	block := Block{
		Header: bd.Header,
		Trans:  bd.Trans,
	}.normalize()

	if bd.Hash != "" && bd.Hash != block.Hash() {
		return Block{}, fmt.Errorf("block hash mismatch, got %s, exp %s", block.Hash(), bd.Hash)
	}

	return block, nil
}

// =============================================================================

// EncodeBlock produces the binary form of the block used by storage.
func EncodeBlock(block Block) ([]byte, error) {
	return rlp.EncodeToBytes(block)
}

// DecodeBlock converts the binary form back into a block.
func DecodeBlock(data []byte) (Block, error) {
	var block Block
	if err := rlp.DecodeBytes(data, &block); err != nil {
		return Block{}, fmt.Errorf("decode block: %w", err)
	}

	return block.normalize(), nil
}

// EncodeHeader produces the binary form of the header used by storage.
func EncodeHeader(header BlockHeader) ([]byte, error) {
	return rlp.EncodeToBytes(header)
}

// DecodeHeader converts the binary form back into a header.
func DecodeHeader(data []byte) (BlockHeader, error) {
	var header BlockHeader
	if err := rlp.DecodeBytes(data, &header); err != nil {
		return BlockHeader{}, fmt.Errorf("decode header: %w", err)
	}

	return header, nil
}

// EncodeTxInfo produces the binary form of a transaction receipt.
func EncodeTxInfo(info TxInfo) ([]byte, error) {
	return rlp.EncodeToBytes(info)
}

// DecodeTxInfo converts the binary form back into a transaction receipt.
func DecodeTxInfo(data []byte) (TxInfo, error) {
	var info TxInfo
	if err := rlp.DecodeBytes(data, &info); err != nil {
		return TxInfo{}, fmt.Errorf("decode tx info: %w", err)
	}

	return info, nil
}
