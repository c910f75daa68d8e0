// ABOUTME: Configuration document types and loading for coven-setup
// ABOUTME: The wizard reads and rewrites the gateway's YAML config as a whole

package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Default values applied when no prior configuration exists.
const (
	DefaultPort      = 18789
	DefaultConfigDir = ".config/coven"
	DefaultFileName  = "gateway.yaml"
)

// BindMode controls which interface the gateway listens on.
type BindMode string

const (
	BindLoopback BindMode = "loopback"
	BindLAN      BindMode = "lan"
	BindAuto     BindMode = "auto"
	BindCustom   BindMode = "custom"
	BindTailnet  BindMode = "tailnet"
)

// AuthMode controls how clients authenticate to the gateway.
type AuthMode string

const (
	AuthToken    AuthMode = "token"
	AuthPassword AuthMode = "password"
)

// TailscaleMode controls overlay-network exposure of the gateway.
type TailscaleMode string

const (
	TailscaleOff    TailscaleMode = "off"
	TailscaleServe  TailscaleMode = "serve"
	TailscaleFunnel TailscaleMode = "funnel"
)

// GatewayMode distinguishes a gateway running on this machine from one
// reached over the network. Remote gateways always take the advanced flow.
type GatewayMode string

const (
	GatewayLocal  GatewayMode = "local"
	GatewayRemote GatewayMode = "remote"
)

// Config is the complete gateway configuration document. The wizard treats
// every write as a full-document replace of the latest in-memory snapshot.
type Config struct {
	Gateway  GatewayConfig  `yaml:"gateway"`
	Channels ChannelsConfig `yaml:"channels,omitempty"`
	Database DatabaseConfig `yaml:"database,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
}

// GatewayConfig holds the gateway network, auth, and exposure settings.
type GatewayConfig struct {
	Mode           GatewayMode     `yaml:"mode,omitempty"`
	Port           int             `yaml:"port"`
	Bind           BindMode        `yaml:"bind"`
	CustomBindHost string          `yaml:"custom_bind_host,omitempty"`
	AuthMode       AuthMode        `yaml:"auth_mode"`
	Token          string          `yaml:"token,omitempty"`
	Password       string          `yaml:"password,omitempty"`
	Tailscale      TailscaleConfig `yaml:"tailscale"`
}

// TailscaleConfig holds overlay-network exposure settings.
type TailscaleConfig struct {
	Mode        TailscaleMode `yaml:"mode"`
	ResetOnExit bool          `yaml:"reset_on_exit,omitempty"`
}

// ChannelsConfig holds configuration for all channel integrations.
type ChannelsConfig struct {
	Slack    SlackConfig    `yaml:"slack,omitempty"`
	Matrix   MatrixConfig   `yaml:"matrix,omitempty"`
	Telegram TelegramConfig `yaml:"telegram,omitempty"`
	WhatsApp WhatsAppConfig `yaml:"whatsapp,omitempty"`
}

// SlackConfig holds Slack integration configuration.
type SlackConfig struct {
	Enabled         bool     `yaml:"enabled,omitempty"`
	Configured      bool     `yaml:"configured,omitempty"`
	AppToken        string   `yaml:"app_token,omitempty"`
	BotToken        string   `yaml:"bot_token,omitempty"`
	AllowedChannels []string `yaml:"allowed_channels,omitempty"`
}

// MatrixConfig holds Matrix integration configuration.
type MatrixConfig struct {
	Enabled     bool   `yaml:"enabled,omitempty"`
	Configured  bool   `yaml:"configured,omitempty"`
	Homeserver  string `yaml:"homeserver,omitempty"`
	UserID      string `yaml:"user_id,omitempty"`
	AccessToken string `yaml:"access_token,omitempty"`
}

// TelegramConfig holds Telegram integration configuration. Telegram supports
// multiple bot accounts; insertion order is preserved so repeated no-op runs
// keep the document byte-stable.
type TelegramConfig struct {
	Accounts []TelegramAccount `yaml:"accounts,omitempty"`
}

// TelegramAccount is a single Telegram bot account.
type TelegramAccount struct {
	ID       string `yaml:"id"`
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
}

// WhatsAppConfig holds WhatsApp integration configuration. WhatsApp needs a
// bridge plugin installed before it can be configured.
type WhatsAppConfig struct {
	Installed  bool   `yaml:"installed,omitempty"`
	Enabled    bool   `yaml:"enabled,omitempty"`
	Configured bool   `yaml:"configured,omitempty"`
	BridgeURL  string `yaml:"bridge_url,omitempty"`
}

// DatabaseConfig holds paths for local state kept alongside the document.
type DatabaseConfig struct {
	AuditPath string `yaml:"audit_path,omitempty"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Default returns a fresh configuration with the documented defaults:
// loopback bind on the default port, token auth, tailscale off.
func Default() *Config {
	return &Config{
		Gateway: GatewayConfig{
			Mode:     GatewayLocal,
			Port:     DefaultPort,
			Bind:     BindLoopback,
			AuthMode: AuthToken,
			Tailscale: TailscaleConfig{
				Mode: TailscaleOff,
			},
		},
	}
}

// Snapshot is the result of reading the configuration document from disk.
// Exists reports whether a file was present; Valid whether it parsed and
// validated. When Valid is false, Config holds defaults and Issues explains
// what was wrong with the on-disk document.
type Snapshot struct {
	Exists bool
	Valid  bool
	Config *Config
	Issues []string
}

// ReadSnapshot loads the configuration document at path. A missing or
// unparseable file is not an error: the snapshot reports it and carries a
// default config so the wizard can proceed as a first run.
func ReadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Snapshot{Config: Default()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	snap := &Snapshot{Exists: true}

	expanded := expandEnvVars(string(data))
	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		snap.Issues = append(snap.Issues, fmt.Sprintf("parsing config file: %v", err))
		snap.Config = Default()
		return snap, nil
	}

	if issues := cfg.Validate(); len(issues) > 0 {
		snap.Issues = append(snap.Issues, issues...)
		snap.Config = Default()
		return snap, nil
	}

	snap.Valid = true
	snap.Config = &cfg
	return snap, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables expand to empty strings.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks the document for values the wizard cannot work with.
// It returns one message per problem rather than stopping at the first,
// so a snapshot can report everything wrong with a hand-edited file.
func (c *Config) Validate() []string {
	var issues []string

	g := c.Gateway
	if g.Port < 0 || g.Port > 65535 {
		issues = append(issues, fmt.Sprintf("gateway.port %d out of range", g.Port))
	}
	switch g.Bind {
	case "", BindLoopback, BindLAN, BindAuto, BindCustom, BindTailnet:
	default:
		issues = append(issues, fmt.Sprintf("gateway.bind %q is not a known bind mode", g.Bind))
	}
	switch g.AuthMode {
	case "", AuthToken, AuthPassword:
	default:
		issues = append(issues, fmt.Sprintf("gateway.auth_mode %q is not a known auth mode", g.AuthMode))
	}
	switch g.Tailscale.Mode {
	case "", TailscaleOff, TailscaleServe, TailscaleFunnel:
	default:
		issues = append(issues, fmt.Sprintf("gateway.tailscale.mode %q is not a known tailscale mode", g.Tailscale.Mode))
	}
	switch g.Mode {
	case "", GatewayLocal, GatewayRemote:
	default:
		issues = append(issues, fmt.Sprintf("gateway.mode %q is not a known gateway mode", g.Mode))
	}
	if g.Bind == BindCustom && g.CustomBindHost == "" {
		issues = append(issues, "gateway.custom_bind_host is required when bind is custom")
	}

	return issues
}

// Clone returns a deep copy of the document. Adapters operate on clones so a
// cancelled or failed step never dirties the engine's current snapshot.
func (c *Config) Clone() *Config {
	out := *c

	out.Channels.Slack.AllowedChannels = append([]string(nil), c.Channels.Slack.AllowedChannels...)
	out.Channels.Telegram.Accounts = append([]TelegramAccount(nil), c.Channels.Telegram.Accounts...)

	return &out
}

// Encode serializes the document to canonical YAML bytes. The same document
// always encodes to the same bytes, which is what makes the engine's
// write-only-on-change comparison meaningful.
func (c *Config) Encode() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}
