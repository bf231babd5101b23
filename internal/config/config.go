package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Mode string

const (
	Online  Mode = "online"
	Offline Mode = "offline"
)

const (
	defaultNodeTimeout     = 10 * time.Second
	defaultRetryAttempts   = 3
	defaultRetryDelay      = 100 * time.Millisecond
	defaultCheckpointDelay = 250 * time.Millisecond
)

// Config holds the configuration settings for the application. It is loaded
// once at start up and never modified afterwards.
type Config struct {
	Server   *ServerConfig  `yaml:"server"`
	LogLevel string         `yaml:"log_level"`
	Network  *NetworkConfig `yaml:"network"`
	Node     *NodeConfig    `yaml:"node"`
	Balance  *BalanceConfig `yaml:"balance"`
}

// ServerConfig holds the configuration settings for the HTTP server.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// NetworkConfig identifies the ledger network served.
type NetworkConfig struct {
	Blockchain string `yaml:"blockchain"`
	Network    string `yaml:"network"`
	Bech32HRP  string `yaml:"bech32_hrp"`
	Mode       Mode   `yaml:"mode"`
	TxTag      string `yaml:"tx_tag"` //写入交易的 indexation 标签, 为空则不附加
}

// NodeConfig holds the settings of the node REST client.
type NodeConfig struct {
	URL           string        `yaml:"url"`
	Timeout       time.Duration `yaml:"timeout"`
	RetryAttempts uint          `yaml:"retry_attempts"`
	RetryDelay    time.Duration `yaml:"retry_delay"`
}

type BalanceConfig struct {
	CheckpointDelay time.Duration `yaml:"checkpoint_delay"` //两次读取里程碑之间的等待
	MaxAttempts     int           `yaml:"max_attempts"`     //0 表示不限次数
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate fills in defaults and rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Server == nil {
		c.Server = &ServerConfig{Host: "0.0.0.0", Port: 3030}
	}

	if c.Network == nil {
		return fmt.Errorf("network section is required")
	}
	if c.Network.Blockchain == "" || c.Network.Network == "" {
		return fmt.Errorf("network.blockchain and network.network are required")
	}
	if c.Network.Bech32HRP == "" {
		return fmt.Errorf("network.bech32_hrp is required")
	}
	switch c.Network.Mode {
	case "":
		c.Network.Mode = Online
	case Online, Offline:
	default:
		return fmt.Errorf("unknown mode %q", c.Network.Mode)
	}

	if c.Node == nil {
		c.Node = &NodeConfig{}
	}
	if c.Network.Mode == Online && c.Node.URL == "" {
		return fmt.Errorf("node.url is required in online mode")
	}
	if c.Node.Timeout <= 0 {
		c.Node.Timeout = defaultNodeTimeout
	}
	if c.Node.RetryAttempts == 0 {
		c.Node.RetryAttempts = defaultRetryAttempts
	}
	if c.Node.RetryDelay <= 0 {
		c.Node.RetryDelay = defaultRetryDelay
	}

	if c.Balance == nil {
		c.Balance = &BalanceConfig{}
	}
	if c.Balance.CheckpointDelay < 0 {
		return fmt.Errorf("balance.checkpoint_delay must not be negative")
	}
	if c.Balance.CheckpointDelay == 0 {
		c.Balance.CheckpointDelay = defaultCheckpointDelay
	}
	if c.Balance.MaxAttempts < 0 {
		return fmt.Errorf("balance.max_attempts must not be negative")
	}
	return nil
}

func (c *Config) IsOffline() bool {
	return c.Network.Mode == Offline
}
