// Package storage handles all the lower level support for maintaining the
// blockchain on disk.
package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/ardanlabs/forkchain/foundation/blockchain/accounts"
	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/syndtr/goleveldb/leveldb"
	leveldbstorage "github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Key prefixes for the different records kept in the database.
const (
	prefixHeader  = "h:"
	prefixBlock   = "b:"
	prefixReceipt = "r:"
	prefixState   = "s:"
	prefixLeaf    = "l:"
	prefixNumber  = "n:"
	keyHead       = "head"
)

// headerCacheSize is the number of headers kept in memory.
const headerCacheSize = 2048

// Store manages reading and writing of blocks, receipts and account
// snapshots to LevelDB. Blocks are content addressed so every branch
// shares the same store.
type Store struct {
	db      *leveldb.DB
	headers *lru.Cache[string, database.BlockHeader]
}

// New opens or creates the database at the specified path. If the path is
// empty the database lives in memory.
func New(dbPath string) (*Store, error) {
	var db *leveldb.DB
	var err error

	switch dbPath {
	case "":
		db, err = leveldb.Open(leveldbstorage.NewMemStorage(), nil)
	default:
		db, err = leveldb.OpenFile(dbPath, nil)
	}

	if err != nil {
		return nil, fmt.Errorf("open database at %q: %w", dbPath, err)
	}

	headers, err := lru.New[string, database.BlockHeader](headerCacheSize)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("header cache: %w", err)
	}

	str := Store{
		db:      db,
		headers: headers,
	}

	return &str, nil
}

// Close cleanly releases the storage area.
func (str *Store) Close() error {
	return str.db.Close()
}

// =============================================================================

// HasBlock reports if the block with the specified hash is persisted.
func (str *Store) HasBlock(hash string) (bool, error) {
	if str.headers.Contains(hash) {
		return true, nil
	}

	exists, err := str.db.Has(key(prefixHeader, hash), nil)
	if err != nil {
		return false, fmt.Errorf("has block %s: %w", hash, err)
	}

	return exists, nil
}

// GetHeader returns the header for the specified block hash.
func (str *Store) GetHeader(hash string) (database.BlockHeader, bool, error) {
	if header, exists := str.headers.Get(hash); exists {
		return header, true, nil
	}

	data, found, err := str.get(key(prefixHeader, hash))
	if err != nil || !found {
		return database.BlockHeader{}, false, err
	}

	header, err := database.DecodeHeader(data)
	if err != nil {
		return database.BlockHeader{}, false, err
	}

	str.headers.Add(hash, header)

	return header, true, nil
}

// GetBlockByHash returns the full block for the specified hash.
func (str *Store) GetBlockByHash(hash string) (database.Block, bool, error) {
	data, found, err := str.get(key(prefixBlock, hash))
	if err != nil || !found {
		return database.Block{}, false, err
	}

	block, err := database.DecodeBlock(data)
	if err != nil {
		return database.Block{}, false, err
	}

	return block, true, nil
}

// GetLatestBlockHeader returns the header the head pointer references.
func (str *Store) GetLatestBlockHeader() (database.BlockHeader, bool, error) {
	hash, found, err := str.get([]byte(keyHead))
	if err != nil || !found {
		return database.BlockHeader{}, false, err
	}

	return str.GetHeader(string(hash))
}

// SetHead moves the head pointer to the specified block, which must
// already be persisted. The path holds the headers that became part of the
// head chain, from the fork point up to and including the new head. They
// are indexed by number in the same batch as the head pointer.
func (str *Store) SetHead(hash string, path []database.BlockHeader) error {
	exists, err := str.HasBlock(hash)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("set head %s: block not found", hash)
	}

	if n := len(path); n > 0 && path[n-1].Hash() != hash {
		return fmt.Errorf("set head %s: path ends at %s", hash, path[n-1].Hash())
	}

	batch := new(leveldb.Batch)
	for _, header := range path {
		batch.Put(numberKey(header.Number), []byte(header.Hash()))
	}
	batch.Put([]byte(keyHead), []byte(hash))

	if err := str.db.Write(batch, nil); err != nil {
		return fmt.Errorf("set head %s: %w", hash, err)
	}

	return nil
}

// CanonicalHash returns the hash of the block at the specified number on
// the head chain, provided the anchor block is on the head chain too. Both
// reads come from one snapshot so a concurrent head change can't mix two
// chains.
func (str *Store) CanonicalHash(anchorHash string, anchorNumber uint64, number uint64) (string, bool, error) {
	snap, err := str.db.GetSnapshot()
	if err != nil {
		return "", false, fmt.Errorf("snapshot: %w", err)
	}
	defer snap.Release()

	anchor, err := snap.Get(numberKey(anchorNumber), nil)
	switch {
	case errors.Is(err, leveldb.ErrNotFound):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("canonical %d: %w", anchorNumber, err)
	}

	if string(anchor) != anchorHash {
		return "", false, nil
	}

	hash, err := snap.Get(numberKey(number), nil)
	if err != nil {
		return "", false, fmt.Errorf("canonical %d: %w", number, err)
	}

	return string(hash), true, nil
}

// GetTxInfos returns every execution receipt recorded for the specified
// transaction. A transaction included in blocks on different branches has
// one receipt per block.
func (str *Store) GetTxInfos(txHash string) ([]database.TxInfo, error) {
	iter := str.db.NewIterator(util.BytesPrefix(key(prefixReceipt, txHash+":")), nil)
	defer iter.Release()

	var infos []database.TxInfo
	for iter.Next() {
		info, err := database.DecodeTxInfo(iter.Value())
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}

	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("tx infos %s: %w", txHash, err)
	}

	return infos, nil
}

// GetState returns the account snapshot persisted under the state root.
func (str *Store) GetState(root string) (*accounts.Accounts, bool, error) {
	data, found, err := str.get(key(prefixState, root))
	if err != nil || !found {
		return nil, false, err
	}

	act, err := accounts.Decode(data)
	if err != nil {
		return nil, false, err
	}

	return act, true, nil
}

// Leaves returns the headers of every persisted block that has no
// persisted children, sorted by block number.
func (str *Store) Leaves() ([]database.BlockHeader, error) {
	iter := str.db.NewIterator(util.BytesPrefix([]byte(prefixLeaf)), nil)
	defer iter.Release()

	var hashes []string
	for iter.Next() {
		hashes = append(hashes, string(iter.Key()[len(prefixLeaf):]))
	}

	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("leaves: %w", err)
	}

	leaves := make([]database.BlockHeader, 0, len(hashes))
	for _, hash := range hashes {
		header, found, err := str.GetHeader(hash)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("leaf %s: header not found", hash)
		}
		leaves = append(leaves, header)
	}

	sort.SliceStable(leaves, func(i, j int) bool {
		return leaves[i].Number < leaves[j].Number
	})

	return leaves, nil
}

// CommitBlock writes the block, its receipts and the resulting account
// snapshot in a single atomic batch. Either everything is written or
// nothing is.
func (str *Store) CommitBlock(block database.Block, infos []database.TxInfo, act *accounts.Accounts) error {
	hash := block.Hash()

	header, err := database.EncodeHeader(block.Header)
	if err != nil {
		return err
	}

	body, err := database.EncodeBlock(block)
	if err != nil {
		return err
	}

	state, err := accounts.Encode(act)
	if err != nil {
		return err
	}

	batch := new(leveldb.Batch)
	batch.Put(key(prefixHeader, hash), header)
	batch.Put(key(prefixBlock, hash), body)
	batch.Put(key(prefixState, block.Header.StateRoot), state)

	for _, info := range infos {
		data, err := database.EncodeTxInfo(info)
		if err != nil {
			return err
		}
		batch.Put(key(prefixReceipt, info.TxHash+":"+hash), data)
	}

	batch.Delete(key(prefixLeaf, block.Header.PrevBlockHash))
	batch.Put(key(prefixLeaf, hash), nil)

	if err := str.db.Write(batch, nil); err != nil {
		return fmt.Errorf("commit block %s: %w", hash, err)
	}

	str.headers.Add(hash, block.Header)

	return nil
}

// =============================================================================

func (str *Store) get(k []byte) ([]byte, bool, error) {
	data, err := str.db.Get(k, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", k, err)
	}

	return data, true, nil
}

func key(prefix string, hash string) []byte {
	return []byte(prefix + hash)
}

// numberKey sorts in block order since the number is big endian.
func numberKey(number uint64) []byte {
	return binary.BigEndian.AppendUint64([]byte(prefixNumber), number)
}
