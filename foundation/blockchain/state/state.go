// Package state is the core API for the blockchain. It owns the head branch
// and the side branches, decides which branch is canonical for every new
// block and tells the network layer when the head changes.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ardanlabs/forkchain/foundation/blockchain/chain"
	"github.com/ardanlabs/forkchain/foundation/blockchain/consensus"
	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/blockchain/executor"
	"github.com/ardanlabs/forkchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/forkchain/foundation/blockchain/mempool"
	"github.com/ardanlabs/forkchain/foundation/blockchain/mempool/selector"
	"github.com/ardanlabs/forkchain/foundation/blockchain/peer"
	"github.com/ardanlabs/forkchain/foundation/blockchain/storage"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// Broadcaster represents the behavior required by the network layer to be
// told about a new head block or transaction. Calls must not block.
type Broadcaster interface {
	NotifyNewHead(block database.Block)
	ShareTx(tx database.BlockTx)
	Shutdown()
}

// ErrShutdown is returned when a block arrives after the node started to
// shut down.
var ErrShutdown = errors.New("state is shutting down")

// =============================================================================

// Config represents the configuration required to start the blockchain node.
type Config struct {
	BeneficiaryID  database.AccountID
	Host           string
	DBPath         string
	Genesis        genesis.Genesis
	SelectStrategy string
	Consensus      consensus.Consensus
	OrphanLimit    int
	KnownPeers     *peer.Set
	EvHandler      EventHandler
}

// snapshot is the fork choice state readers see. A snapshot is never
// changed after it's published.
type snapshot struct {
	head     *chain.Branch
	branches map[string]*chain.Branch
}

// State manages the blockchain.
type State struct {
	beneficiaryID database.AccountID
	host          string
	evHandler     EventHandler

	knownPeers *peer.Set
	genesis    genesis.Genesis
	mempool    *mempool.Mempool
	store      *storage.Store
	chainCfg   chain.Config

	snap    atomic.Pointer[snapshot]
	orphans *lru.Cache[string, database.Block]

	selects chan selectRequest
	notify  *fn.ConcurrentQueue[database.Block]

	mu          sync.RWMutex
	broadcaster Broadcaster

	shut chan struct{}
	wg   sync.WaitGroup
}

// New constructs the chain engine. It loads or writes the genesis block,
// loads the persisted head and recovers the side branches from the blocks
// that have no children.
func New(cfg Config) (*State, error) {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	cons := cfg.Consensus
	if cons == nil {
		cons = consensus.NewPOW(cfg.Genesis.Difficulty)
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewSet()
	}

	strategy := cfg.SelectStrategy
	if strategy == "" {
		strategy = selector.StrategyTip
	}

	mp, err := mempool.NewWithStrategy(strategy)
	if err != nil {
		return nil, err
	}

	store, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	s := State{
		beneficiaryID: cfg.BeneficiaryID,
		host:          cfg.Host,
		evHandler:     ev,
		knownPeers:    knownPeers,
		genesis:       cfg.Genesis,
		mempool:       mp,
		store:         store,
		chainCfg: chain.Config{
			Store:        store,
			Consensus:    cons,
			Executor:     executor.NewTransfer(cfg.Genesis.ChainID),
			MiningReward: cfg.Genesis.MiningReward,
			EvHandler:    chain.EventHandler(ev),
		},
		selects: make(chan selectRequest),
		notify:  fn.NewConcurrentQueue[database.Block](16),
		shut:    make(chan struct{}),
	}

	if cfg.OrphanLimit > 0 {
		if s.orphans, err = lru.New[string, database.Block](cfg.OrphanLimit); err != nil {
			store.Close()
			return nil, fmt.Errorf("orphan pool: %w", err)
		}
	}

	if err := s.load(); err != nil {
		store.Close()
		return nil, err
	}

	s.notify.Start()

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.writer()
	}()
	go func() {
		defer s.wg.Done()
		s.deliver()
	}()

	if err := s.recoverBranches(); err != nil {
		s.Shutdown()
		return nil, err
	}

	return &s, nil
}

// SetBroadcaster registers the network layer that is told about new heads.
func (s *State) SetBroadcaster(b Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.broadcaster = b
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	close(s.shut)
	s.wg.Wait()
	s.notify.Stop()

	s.mu.RLock()
	b := s.broadcaster
	s.mu.RUnlock()

	if b != nil {
		b.Shutdown()
	}

	return s.store.Close()
}

// =============================================================================

// load sets the head from the persisted head pointer. A new database is
// initialized with the genesis block.
func (s *State) load() error {
	header, found, err := s.store.GetLatestBlockHeader()
	if err != nil {
		return err
	}

	if !found {
		block, act, err := s.genesis.Block()
		if err != nil {
			return err
		}

		s.evHandler("state: load: writing genesis: blk[%s]", block.Hash())

		if err := s.store.CommitBlock(block, nil, act); err != nil {
			return err
		}
		if err := s.store.SetHead(block.Hash(), []database.BlockHeader{block.Header}); err != nil {
			return err
		}

		header = block.Header
	}

	head, err := chain.New(s.chainCfg, header.Hash())
	if err != nil {
		return err
	}

	s.snap.Store(&snapshot{
		head:     head,
		branches: make(map[string]*chain.Branch),
	})

	s.evHandler("state: load: head: blk[%d]: %s", header.Number, header.Hash())
	headHeight.Set(float64(header.Number))

	return nil
}

// recoverBranches runs every persisted tip that isn't the head through fork
// choice, lowest first, so the side branches that existed before a
// restart are tracked again. No notifications are sent.
func (s *State) recoverBranches() error {
	leaves, err := s.store.Leaves()
	if err != nil {
		return err
	}

	for _, leaf := range leaves {
		hash := leaf.Hash()
		if hash == s.HeadBranch() {
			continue
		}

		branch, err := chain.New(s.chainCfg, hash)
		if err != nil {
			return err
		}

		block, err := branch.HeadBlock()
		if err != nil {
			return err
		}

		outcome, err := s.selectHead(context.Background(), branch, block, false)
		if err != nil {
			return err
		}

		s.evHandler("state: recoverBranches: blk[%d]: %s: %s", leaf.Number, hash, outcome)
	}

	return nil
}

// current returns the published snapshot.
func (s *State) current() *snapshot {
	return s.snap.Load()
}
