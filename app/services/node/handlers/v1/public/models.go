package public

import (
	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
)

type tx struct {
	Hash        string             `json:"hash"`
	FromAccount database.AccountID `json:"from"`
	FromName    string             `json:"from_name"`
	To          database.AccountID `json:"to"`
	ToName      string             `json:"to_name"`
	ChainID     uint16             `json:"chain_id"`
	Nonce       uint64             `json:"nonce"`
	Value       uint64             `json:"value"`
	Tip         uint64             `json:"tip"`
	Data        []byte             `json:"data,omitempty"`
	TimeStamp   uint64             `json:"timestamp"`
	GasPrice    uint64             `json:"gas_price"`
	GasUnits    uint64             `json:"gas_units"`
	Sig         string             `json:"sig"`
	Proof       *database.TxInfo   `json:"proof,omitempty"`
}

type block struct {
	Number        uint64             `json:"number"`
	Hash          string             `json:"hash"`
	PrevBlockHash string             `json:"prev_block_hash"`
	TimeStamp     uint64             `json:"timestamp"`
	BeneficiaryID database.AccountID `json:"beneficiary"`
	BeneficiaryNm string             `json:"beneficiary_name"`
	Difficulty    uint16             `json:"difficulty"`
	MiningReward  uint64             `json:"mining_reward"`
	Nonce         uint64             `json:"nonce"`
	StateRoot     string             `json:"state_root"`
	TransRoot     string             `json:"trans_root"`
	Transactions  []tx               `json:"txs"`
}

type header struct {
	Number        uint64 `json:"number"`
	Hash          string `json:"hash"`
	PrevBlockHash string `json:"prev_block_hash"`
	StateRoot     string `json:"state_root"`
}

type chainHead struct {
	Head         header   `json:"head"`
	SideBranches []header `json:"side_branches"`
	Uncommitted  int      `json:"uncommitted"`
}

type info struct {
	Account database.AccountID `json:"account"`
	Name    string             `json:"name"`
	Balance uint64             `json:"balance"`
	Nonce   uint64             `json:"nonce"`
}

type actInfo struct {
	HeadBlock   string `json:"head_block"`
	StateRoot   string `json:"state_root"`
	Uncommitted int    `json:"uncommitted"`
	Accounts    []info `json:"accounts"`
}

// =============================================================================

func toHeader(h database.BlockHeader) header {
	return header{
		Number:        h.Number,
		Hash:          h.Hash(),
		PrevBlockHash: h.PrevBlockHash,
		StateRoot:     h.StateRoot,
	}
}
