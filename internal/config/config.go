package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/spf13/viper"

	"kaetram/client/internal/entity"
	"kaetram/client/internal/net/proto"
	"kaetram/client/internal/netsync"
	"kaetram/client/internal/pathfinding"
	"kaetram/client/internal/sim"
	"kaetram/client/logging"
)

// EnvPrefix scopes environment overrides, e.g. KAETRAM_TRANSPORT_URL.
const EnvPrefix = "KAETRAM"

type Config struct {
	Client     ClientConfig     `mapstructure:"client"`
	Transport  TransportConfig  `mapstructure:"transport"`
	Map        MapConfig        `mapstructure:"map"`
	Pathfinder PathfinderConfig `mapstructure:"pathfinder"`
	Movement   MovementConfig   `mapstructure:"movement"`
	Sync       SyncConfig       `mapstructure:"sync"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type ClientConfig struct {
	TickRate    int     `mapstructure:"tick_rate"`
	BudgetRatio float64 `mapstructure:"budget_ratio"`
}

type TransportConfig struct {
	Kind          string        `mapstructure:"kind"`
	URL           string        `mapstructure:"url"`
	Codec         string        `mapstructure:"codec"`
	Session       string        `mapstructure:"session"`
	InboxCapacity int           `mapstructure:"inbox_capacity"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
}

type MapConfig struct {
	Width    int `mapstructure:"width"`
	Height   int `mapstructure:"height"`
	TileSize int `mapstructure:"tile_size"`
}

type PathfinderConfig struct {
	Connectivity  string `mapstructure:"connectivity"`
	Heuristic     string `mapstructure:"heuristic"`
	MaxExpansions int    `mapstructure:"max_expansions"`
	Fallback      bool   `mapstructure:"fallback"`
}

type MovementConfig struct {
	DefaultSpeed         time.Duration `mapstructure:"default_speed"`
	FollowRepathDistance int           `mapstructure:"follow_repath_distance"`
	TeleportAnimation    time.Duration `mapstructure:"teleport_animation"`
	DespawnAnimation     time.Duration `mapstructure:"despawn_animation"`
}

type SyncConfig struct {
	RefreshCooldown time.Duration `mapstructure:"refresh_cooldown"`
}

type LoggingConfig struct {
	Sinks      []string       `mapstructure:"sinks"`
	Level      string         `mapstructure:"level"`
	Color      bool           `mapstructure:"color"`
	JSONPath   string         `mapstructure:"json_path"`
	ZapPath    string         `mapstructure:"zap_path"`
	BufferSize int            `mapstructure:"buffer_size"`
	Rotation   RotationConfig `mapstructure:"rotation"`
}

type RotationConfig struct {
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	Compress   bool `mapstructure:"compress"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("client.tick_rate", sim.DefaultTickRate)
	v.SetDefault("client.budget_ratio", 1.0)

	v.SetDefault("transport.kind", "ws")
	v.SetDefault("transport.url", "ws://127.0.0.1:9001")
	v.SetDefault("transport.codec", "json")
	v.SetDefault("transport.inbox_capacity", 1024)
	v.SetDefault("transport.write_timeout", 10*time.Second)

	v.SetDefault("map.width", 256)
	v.SetDefault("map.height", 256)
	v.SetDefault("map.tile_size", 16)

	v.SetDefault("pathfinder.connectivity", pathfinding.EightWay.String())
	v.SetDefault("pathfinder.heuristic", pathfinding.Diagonal.String())
	v.SetDefault("pathfinder.max_expansions", pathfinding.DefaultMaxExpansions)
	v.SetDefault("pathfinder.fallback", true)

	v.SetDefault("movement.default_speed", entity.DefaultSpeed)
	v.SetDefault("movement.follow_repath_distance", 1)
	v.SetDefault("movement.teleport_animation", 500*time.Millisecond)
	v.SetDefault("movement.despawn_animation", time.Second)

	v.SetDefault("sync.refresh_cooldown", netsync.DefaultRefreshCooldown)

	v.SetDefault("logging.sinks", []string{"console"})
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.buffer_size", 512)
	v.SetDefault("logging.rotation.max_size_mb", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age_days", 7)
}

// Load reads path, if given, over the defaults and applies KAETRAM_*
// environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	v.Unmarshal(&cfg)
	return &cfg
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.Client.TickRate <= 0 {
		el.Add(fmt.Errorf("client.tick_rate must be positive"))
	}
	if c.Client.BudgetRatio < 0 {
		el.Add(fmt.Errorf("client.budget_ratio must not be negative"))
	}

	el.Add(c.Transport.Validate())
	el.Add(c.Map.Validate())
	el.Add(c.Pathfinder.Validate())
	el.Add(c.Movement.Validate())

	if c.Sync.RefreshCooldown <= 0 {
		el.Add(fmt.Errorf("sync.refresh_cooldown must be positive"))
	}

	el.Add(c.Logging.Validate())

	return el.Err()
}

func (c *TransportConfig) Validate() error {
	el := errors.NewErrorList()

	switch c.Kind {
	case "ws", "nats":
	default:
		el.Add(fmt.Errorf("transport.kind %q must be ws or nats", c.Kind))
	}
	if c.URL == "" {
		el.Add(fmt.Errorf("transport.url is required"))
	}
	if _, err := proto.CodecByName(c.Codec); err != nil {
		el.Add(fmt.Errorf("transport.codec: %w", err))
	}
	if c.InboxCapacity <= 0 {
		el.Add(fmt.Errorf("transport.inbox_capacity must be positive"))
	}

	return el.Err()
}

func (c *MapConfig) Validate() error {
	el := errors.NewErrorList()

	if c.Width <= 0 || c.Height <= 0 {
		el.Add(fmt.Errorf("map dimensions must be positive, got %dx%d", c.Width, c.Height))
	}
	if c.TileSize <= 0 {
		el.Add(fmt.Errorf("map.tile_size must be positive"))
	}

	return el.Err()
}

func (c *PathfinderConfig) Validate() error {
	el := errors.NewErrorList()

	if _, ok := pathfinding.ParseConnectivity(c.Connectivity); !ok {
		el.Add(fmt.Errorf("pathfinder.connectivity %q is unknown", c.Connectivity))
	}
	if _, ok := pathfinding.ParseHeuristic(c.Heuristic); !ok {
		el.Add(fmt.Errorf("pathfinder.heuristic %q is unknown", c.Heuristic))
	}
	if c.MaxExpansions <= 0 {
		el.Add(fmt.Errorf("pathfinder.max_expansions must be positive"))
	}

	return el.Err()
}

func (c *MovementConfig) Validate() error {
	el := errors.NewErrorList()

	if c.DefaultSpeed <= 0 {
		el.Add(fmt.Errorf("movement.default_speed must be positive"))
	}
	if c.FollowRepathDistance <= 0 {
		el.Add(fmt.Errorf("movement.follow_repath_distance must be positive"))
	}
	if c.TeleportAnimation < 0 || c.DespawnAnimation < 0 {
		el.Add(fmt.Errorf("movement animations must not be negative"))
	}

	return el.Err()
}

func (c *LoggingConfig) Validate() error {
	el := errors.NewErrorList()

	if _, ok := logging.ParseSeverity(c.Level); !ok {
		el.Add(fmt.Errorf("logging.level %q is unknown", c.Level))
	}
	for _, sink := range c.Sinks {
		switch sink {
		case "console", "zap":
		case "json":
			if c.JSONPath == "" {
				el.Add(fmt.Errorf("logging.json_path is required for the json sink"))
			}
		default:
			el.Add(fmt.Errorf("logging sink %q is unknown", sink))
		}
	}

	return el.Err()
}
