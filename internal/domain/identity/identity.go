// Package identity derives the bidirectional ServerID <-> ClientID mapping
// from a loaded catalog. The map is the central dictionary used to translate
// between the two numbering schemes; it is rebuilt wholesale whenever the
// catalog reloads and is never mutated afterwards.
package identity

import (
	"github.com/mapforge/crossid/internal/domain/catalog"
)

// IdentityMap holds both lookup directions. Lookups return an explicit miss
// signal so callers can never mistake a fallback for a successful mapping.
type IdentityMap struct {
	serverToClient map[catalog.ServerID]catalog.ClientID
	clientToServer map[catalog.ClientID]catalog.ServerID
}

// Build iterates every definition exactly once in catalog order and inserts
// both directions. When a client id is shared by several server ids (subtype
// families), the first definition in catalog order wins, matching the items
// database loader rule.
func Build(c *catalog.Catalog) *IdentityMap {
	m := &IdentityMap{
		serverToClient: make(map[catalog.ServerID]catalog.ClientID, c.Len()),
		clientToServer: make(map[catalog.ClientID]catalog.ServerID, c.Len()),
	}
	for _, def := range c.Definitions() {
		if _, exists := m.serverToClient[def.ServerID]; !exists {
			m.serverToClient[def.ServerID] = def.ClientID
		}
		if _, exists := m.clientToServer[def.ClientID]; !exists {
			m.clientToServer[def.ClientID] = def.ServerID
		}
	}
	return m
}

// ClientFor returns the client id mapped to a server id.
func (m *IdentityMap) ClientFor(id catalog.ServerID) (catalog.ClientID, bool) {
	cid, ok := m.serverToClient[id]
	return cid, ok
}

// ServerFor returns the server id mapped to a client id.
func (m *IdentityMap) ServerFor(id catalog.ClientID) (catalog.ServerID, bool) {
	sid, ok := m.clientToServer[id]
	return sid, ok
}

// HasServer reports whether a server id has a client mapping.
func (m *IdentityMap) HasServer(id catalog.ServerID) bool {
	_, ok := m.serverToClient[id]
	return ok
}

// HasClient reports whether a client id has a server mapping.
func (m *IdentityMap) HasClient(id catalog.ClientID) bool {
	_, ok := m.clientToServer[id]
	return ok
}

// Len returns the number of server->client entries.
func (m *IdentityMap) Len() int {
	return len(m.serverToClient)
}
