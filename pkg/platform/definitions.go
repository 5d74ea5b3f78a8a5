package platform

import (
	"fmt"
	"net"

	"go.minekube.com/common/minecraft/key"

	"go.minekube.com/pex/pkg/contexts"
	"go.minekube.com/pex/pkg/util/netutil"
)

// Context keys of the host definitions.
const (
	WorldKey     = "world"
	DimensionKey = "dimension"
	RemoteIPKey  = "remoteip"
	LocalIPKey   = "localip"
	LocalHostKey = "localhost"
	LocalPortKey = "localport"
)

// Definitions returns all host context definitions.
// server is used for value suggestions and may be nil.
func Definitions(server Server) *contexts.Registry {
	return contexts.NewRegistry(
		contexts.Erase[key.Key](NewWorldDefinition(server)),
		contexts.Erase[key.Key](NewDimensionDefinition(server)),
		contexts.Erase[contexts.IPSet](RemoteIPDefinition{contexts.IPSetDefinition{Key: RemoteIPKey}}),
		contexts.Erase[contexts.IPSet](LocalIPDefinition{contexts.IPSetDefinition{Key: LocalIPKey}}),
		contexts.Erase[string](LocalHostDefinition{contexts.Simple{Key: LocalHostKey}}),
		contexts.Erase[int](LocalPortDefinition{contexts.Int{Key: LocalPortKey}}),
	)
}

// KeyDefinition is a Definition of namespaced keys compared by equality.
// Values without namespace are in the minecraft namespace.
type KeyDefinition struct{ Key string }

func (d KeyDefinition) Name() string             { return d.Key }
func (KeyDefinition) Serialize(v key.Key) string { return v.String() }
func (KeyDefinition) Deserialize(v string) (key.Key, error) {
	k, err := key.Parse(v)
	if err != nil {
		return nil, fmt.Errorf("not a key: %w", err)
	}
	return k, nil
}
func (KeyDefinition) Matches(own, test key.Key) bool {
	return own != nil && test != nil && own.String() == test.String()
}
func (KeyDefinition) AccumulateFromSubject(contexts.Subject, func(key.Key)) {}
func (KeyDefinition) SuggestValues(contexts.Subject) []key.Key              { return nil }

// WorldDefinition is the world a player or command source is in.
type WorldDefinition struct {
	KeyDefinition
	server Server
}

var _ contexts.SourceDefinition[key.Key] = WorldDefinition{}

// NewWorldDefinition returns the world definition suggesting the worlds of server.
func NewWorldDefinition(server Server) WorldDefinition {
	return WorldDefinition{KeyDefinition: KeyDefinition{Key: WorldKey}, server: server}
}

func (WorldDefinition) AccumulateFromSubject(s contexts.Subject, fn func(key.Key)) {
	if p, ok := playerOf(s); ok {
		emitKey(p.World(), fn)
	}
}

func (WorldDefinition) AccumulateFromSource(source any, fn func(key.Key)) {
	if l, ok := source.(Located); ok {
		emitKey(l.World(), fn)
	}
}

// SuggestValues returns all worlds of the server.
func (d WorldDefinition) SuggestValues(contexts.Subject) []key.Key {
	if d.server == nil {
		return nil
	}
	return d.server.Worlds()
}

// DimensionDefinition is the dimension type of the world a player or command source is in.
type DimensionDefinition struct {
	KeyDefinition
	server Server
}

var _ contexts.SourceDefinition[key.Key] = DimensionDefinition{}

// NewDimensionDefinition returns the dimension definition suggesting the dimension types of server.
func NewDimensionDefinition(server Server) DimensionDefinition {
	return DimensionDefinition{KeyDefinition: KeyDefinition{Key: DimensionKey}, server: server}
}

func (DimensionDefinition) AccumulateFromSubject(s contexts.Subject, fn func(key.Key)) {
	if p, ok := playerOf(s); ok {
		emitKey(p.Dimension(), fn)
	}
}

func (DimensionDefinition) AccumulateFromSource(source any, fn func(key.Key)) {
	if l, ok := source.(Located); ok {
		emitKey(l.Dimension(), fn)
	}
}

// SuggestValues returns all dimension types of the server.
func (d DimensionDefinition) SuggestValues(contexts.Subject) []key.Key {
	if d.server == nil {
		return nil
	}
	return d.server.Dimensions()
}

func emitKey(k key.Key, fn func(key.Key)) {
	if k != nil {
		fn(k)
	}
}

// RemoteIPDefinition is the address a player connects from.
type RemoteIPDefinition struct{ contexts.IPSetDefinition }

var _ contexts.SourceDefinition[contexts.IPSet] = RemoteIPDefinition{}

func (RemoteIPDefinition) AccumulateFromSubject(s contexts.Subject, fn func(contexts.IPSet)) {
	if p, ok := playerOf(s); ok {
		emitIP(p.RemoteAddr(), fn)
	}
}

func (RemoteIPDefinition) AccumulateFromSource(source any, fn func(contexts.IPSet)) {
	if p, ok := sourcePlayer(source); ok {
		emitIP(p.RemoteAddr(), fn)
	}
}

// LocalIPDefinition is the address a player connected to.
// Virtual hosts given as a hostname have no value.
type LocalIPDefinition struct{ contexts.IPSetDefinition }

var _ contexts.SourceDefinition[contexts.IPSet] = LocalIPDefinition{}

func (LocalIPDefinition) AccumulateFromSubject(s contexts.Subject, fn func(contexts.IPSet)) {
	if p, ok := playerOf(s); ok {
		emitIP(p.VirtualHost(), fn)
	}
}

func (LocalIPDefinition) AccumulateFromSource(source any, fn func(contexts.IPSet)) {
	if p, ok := sourcePlayer(source); ok {
		emitIP(p.VirtualHost(), fn)
	}
}

func emitIP(addr net.Addr, fn func(contexts.IPSet)) {
	if ip, ok := netutil.IP(addr); ok {
		fn(contexts.OnlyIP(ip))
	}
}

// LocalHostDefinition is the hostname a player connected with.
type LocalHostDefinition struct{ contexts.Simple }

var _ contexts.SourceDefinition[string] = LocalHostDefinition{}

func (LocalHostDefinition) AccumulateFromSubject(s contexts.Subject, fn func(string)) {
	if p, ok := playerOf(s); ok {
		emitHost(p, fn)
	}
}

func (LocalHostDefinition) AccumulateFromSource(source any, fn func(string)) {
	if p, ok := sourcePlayer(source); ok {
		emitHost(p, fn)
	}
}

func emitHost(c Connection, fn func(string)) {
	if host := netutil.Host(c.VirtualHost()); host != "" {
		fn(host)
	}
}

// LocalPortDefinition is the port a player connected to.
type LocalPortDefinition struct{ contexts.Int }

var _ contexts.SourceDefinition[int] = LocalPortDefinition{}

func (LocalPortDefinition) AccumulateFromSubject(s contexts.Subject, fn func(int)) {
	if p, ok := playerOf(s); ok {
		emitPort(p, fn)
	}
}

func (LocalPortDefinition) AccumulateFromSource(source any, fn func(int)) {
	if p, ok := sourcePlayer(source); ok {
		emitPort(p, fn)
	}
}

func emitPort(c Connection, fn func(int)) {
	if port := netutil.Port(c.VirtualHost()); port != 0 {
		fn(int(port))
	}
}
