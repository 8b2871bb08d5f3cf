// Package peer maintains the set of nodes this node shares new heads with.
package peer

import (
	"sort"
	"sync"
)

// Peer represents information about a node in the network.
type Peer struct {
	Host string `json:"host" validate:"required,hostname_port"`
}

// New constructs a new peer value.
func New(host string) Peer {
	return Peer{
		Host: host,
	}
}

// Match validates if the specified host matches this node.
func (p Peer) Match(host string) bool {
	return p.Host == host
}

// =============================================================================

// Status represents what a node reports about its chain to its peers.
type Status struct {
	HeadHash     string `json:"head_hash"`
	HeadNumber   uint64 `json:"head_number"`
	SideBranches int    `json:"side_branches"`
	KnownPeers   []Peer `json:"known_peers"`
}

// =============================================================================

// Set represents the data representation to maintain a set of known peers.
type Set struct {
	mu  sync.RWMutex
	set map[Peer]struct{}
}

// NewSet constructs a new set to manage node peer information.
func NewSet(hosts ...string) *Set {
	ps := Set{
		set: make(map[Peer]struct{}, len(hosts)),
	}

	for _, host := range hosts {
		ps.set[New(host)] = struct{}{}
	}

	return &ps
}

// Add adds a new node to the set. It reports false if the node was
// already known.
func (ps *Set) Add(peer Peer) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, exists := ps.set[peer]; exists {
		return false
	}

	ps.set[peer] = struct{}{}
	return true
}

// Remove removes a node from the set.
func (ps *Set) Remove(peer Peer) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	delete(ps.set, peer)
}

// Copy returns the known peers sorted by host, leaving out the specified
// host.
func (ps *Set) Copy(host string) []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	peers := make([]Peer, 0, len(ps.set))
	for peer := range ps.set {
		if !peer.Match(host) {
			peers = append(peers, peer)
		}
	}

	sort.Slice(peers, func(i, j int) bool {
		return peers[i].Host < peers[j].Host
	})

	return peers
}
