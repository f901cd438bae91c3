package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Driver names a repository backend.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

type Config struct {
	Database      DatabaseConfig      `toml:"database"`
	Logging       LoggingConfig       `toml:"logging"`
	Board         BoardConfig         `toml:"board"`
	Seed          SeedConfig          `toml:"seed"`
	Notifications NotificationsConfig `toml:"notifications"`
	Server        ServerConfig        `toml:"server"`
	Events        EventsConfig        `toml:"events"`
	Keys          KeyConfig           `toml:"keys"`
}

type DatabaseConfig struct {
	Driver Driver `toml:"driver"`
	Path   string `toml:"path"`
	DSN    string `toml:"dsn"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type BoardConfig struct {
	ShowSidebar      bool `toml:"show_sidebar"`
	SidebarCollapsed bool `toml:"sidebar_collapsed"`
	ShowAssignee     bool `toml:"show_assignee"`
	ToastSeconds     int  `toml:"toast_seconds"`
}

type SeedConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // YAML seed; empty tries <config dir>/seed.yaml, then the built-in set
}

// NotificationsConfig holds Liquid templates; blank values use built-in wording.
type NotificationsConfig struct {
	CreatedTitle string `toml:"created_title"`
	CreatedBody  string `toml:"created_body"`
	MovedTitle   string `toml:"moved_title"`
	MovedBody    string `toml:"moved_body"`
}

type ServerConfig struct {
	HTTPBind       string   `toml:"http_bind"`
	APIEndpoint    string   `toml:"api_endpoint"`
	MCPEndpoint    string   `toml:"mcp_endpoint"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// KeyConfig overrides board key bindings; blank keeps the built-in key.
type KeyConfig struct {
	AddLead       string `toml:"add_lead"`
	Grab          string `toml:"grab"`
	ToggleSidebar string `toml:"toggle_sidebar"`
	CopyEmail     string `toml:"copy_email"`
}

type EventsConfig struct {
	RedisAddr     string `toml:"redis_addr"`
	ChannelPrefix string `toml:"channel_prefix"`
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Driver: DriverMemory,
			Path:   dbPath,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".leadflow/log",
			},
		},
		Board: BoardConfig{
			ShowSidebar:  true,
			ShowAssignee: true,
			ToastSeconds: 3,
		},
		Seed: SeedConfig{
			Enabled: true,
		},
		Server: ServerConfig{
			HTTPBind:    "127.0.0.1:8080",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
		Events: EventsConfig{
			ChannelPrefix: "leadflow",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch Driver(strings.ToLower(strings.TrimSpace(string(c.Database.Driver)))) {
	case "", DriverMemory:
	case DriverSQLite:
		if strings.TrimSpace(c.Database.Path) == "" {
			return errors.New("database.path is required for the sqlite driver")
		}
	case DriverPostgres:
		if strings.TrimSpace(c.Database.DSN) == "" {
			return errors.New("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("invalid database.driver: %q", c.Database.Driver)
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	if c.Logging.DevFile.Enabled && strings.TrimSpace(c.Logging.DevFile.Dir) == "" {
		return errors.New("logging.dev_file.dir is required when dev_file is enabled")
	}

	if c.Board.ToastSeconds < 0 {
		return errors.New("board.toast_seconds must be >= 0")
	}

	if bind := strings.TrimSpace(c.Server.HTTPBind); bind != "" {
		if _, _, err := net.SplitHostPort(bind); err != nil {
			return fmt.Errorf("invalid server.http_bind %q: %w", c.Server.HTTPBind, err)
		}
	}
	for name, endpoint := range map[string]string{
		"server.api_endpoint": c.Server.APIEndpoint,
		"server.mcp_endpoint": c.Server.MCPEndpoint,
	} {
		endpoint = strings.TrimSpace(endpoint)
		if endpoint != "" && !strings.HasPrefix(endpoint, "/") {
			return fmt.Errorf("%s must start with '/': %q", name, endpoint)
		}
	}

	if addr := strings.TrimSpace(c.Events.RedisAddr); addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("invalid events.redis_addr %q: %w", c.Events.RedisAddr, err)
		}
	}
	if strings.ContainsAny(c.Events.ChannelPrefix, " \t\n") {
		return fmt.Errorf("events.channel_prefix must not contain whitespace: %q", c.Events.ChannelPrefix)
	}

	return nil
}

// NormalizedDriver returns the lowercased driver, defaulting to memory.
func (c Config) NormalizedDriver() Driver {
	d := Driver(strings.ToLower(strings.TrimSpace(string(c.Database.Driver))))
	if d == "" {
		return DriverMemory
	}
	return d
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
