package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Chat   ChatConfig
	LLM    LLMConfig
}

type ServerConfig struct {
	Address string
}

type DBConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     int
}

// ChatConfig 對話引擎的預設參數
type ChatConfig struct {
	MaxTurns        int     `mapstructure:"max_turns"`
	Temperature     float32 `mapstructure:"temperature"`
	DefaultProvider string  `mapstructure:"default_provider"`
}

// LLMConfig 模型供應商的連線設定
// 每個 provider 對應一組 OpenAI 相容的 API 端點
type LLMConfig struct {
	Providers map[string]ProviderConfig `mapstructure:"providers"`
}

type ProviderConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./pkg/config")

	// API 金鑰等敏感設定可由環境變數覆蓋，例如 LLM_PROVIDERS_PRIMARY_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("chat.max_turns", 10)
	viper.SetDefault("chat.temperature", 0.7)
	viper.SetDefault("chat.default_provider", "primary")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
