// Package platform connects permission contexts and commands to a host
// server. The host implements the small interfaces in this package for its
// players, command sources and server, and gets the context definitions and
// the /pex command in return.
package platform

import (
	"net"

	"go.minekube.com/common/minecraft/key"

	"go.minekube.com/pex/pkg/command"
	"go.minekube.com/pex/pkg/contexts"
)

// Connection is the network connection of a player.
type Connection interface {
	// RemoteAddr returns the player's remote address.
	RemoteAddr() net.Addr
	// VirtualHost returns the address the player connected to,
	// as sent in the handshake. It may be a hostname.
	VirtualHost() net.Addr
}

// Located is something in a world.
type Located interface {
	// World returns the world key or nil if unknown.
	World() key.Key
	// Dimension returns the dimension type key or nil if unknown.
	Dimension() key.Key
}

// Player is an online player.
type Player interface {
	Connection
	Located
}

// Source is a command source of the host.
// If it is a Player or Located, contexts are derived from it.
type Source interface {
	command.Source
}

// Server is the host server.
type Server interface {
	// Worlds returns the keys of all loaded worlds.
	Worlds() []key.Key
	// Dimensions returns the keys of all dimension types.
	Dimensions() []key.Key
}

// Subject is a permission subject whose associated object
// is a Player while it is online.
type Subject = contexts.Subject

func playerOf(s Subject) (Player, bool) {
	if s == nil {
		return nil, false
	}
	p, ok := s.Associated().(Player)
	return p, ok
}

// sourcePlayer returns the player a command source is, if any.
func sourcePlayer(source any) (Player, bool) {
	p, ok := source.(Player)
	return p, ok
}
