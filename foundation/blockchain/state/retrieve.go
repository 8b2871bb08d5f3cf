package state

import (
	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/forkchain/foundation/blockchain/peer"
)

// RetrieveHost returns a copy of host information.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveConsensus returns the name of the consensus strategy.
func (s *State) RetrieveConsensus() string {
	return s.chainCfg.Consensus.Name()
}

// RetrieveMempool returns a copy of the mempool.
func (s *State) RetrieveMempool() []database.BlockTx {
	return s.mempool.PickBest()
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// AddKnownPeer provides the ability to add a new peer to the known peer
// list. It reports false if the peer was already known.
func (s *State) AddKnownPeer(p peer.Peer) bool {
	return s.knownPeers.Add(p)
}

// RemoveKnownPeer provides the ability to remove a peer from the known peer
// list.
func (s *State) RemoveKnownPeer(p peer.Peer) {
	s.knownPeers.Remove(p)
}

// RetrieveStatus returns what this node reports about its chain.
func (s *State) RetrieveStatus() peer.Status {
	snap := s.current()
	head := snap.head.CurrentHeader()

	return peer.Status{
		HeadHash:     snap.head.TipHash(),
		HeadNumber:   head.Number,
		SideBranches: len(snap.branches),
		KnownPeers:   s.RetrieveKnownPeers(),
	}
}
