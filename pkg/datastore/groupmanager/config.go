package groupmanager

// DefaultConfig is a default Config.
var DefaultConfig = Config{
	GroupManagerRoot: "plugins/GroupManager",
}

// Config is the configuration of a GroupManager store.
type Config struct {
	// GroupManagerRoot is the GroupManager data directory holding
	// config.yml, globalgroups.yml and worlds/.
	GroupManagerRoot string `mapstructure:"groupManagerRoot" yaml:"groupManagerRoot" json:"groupManagerRoot" validate:"required"`
}
