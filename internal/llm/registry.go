package llm

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"aichat_web/pkg/config"
)

// Provider 一組已設定好的模型端點
type Provider struct {
	Name   string
	Model  string
	Client Client
}

// Registry 依名稱管理多組模型供應商
// 角色的 ModelProvider 欄位對應這裡的名稱，找不到時退回預設供應商
type Registry struct {
	providers       map[string]*Provider
	defaultProvider string
}

func NewRegistry(cfg config.LLMConfig, defaultProvider string, logger zerolog.Logger) *Registry {
	providers := make(map[string]*Provider, len(cfg.Providers))
	for name, pc := range cfg.Providers {
		providers[name] = &Provider{
			Name:   name,
			Model:  pc.Model,
			Client: NewOpenAIClient(pc.BaseURL, pc.APIKey, logger.With().Str("provider", name).Logger()),
		}
	}
	return &Registry{
		providers:       providers,
		defaultProvider: defaultProvider,
	}
}

// Resolve 取得指定名稱的供應商，空字串或未知名稱則使用預設
func (r *Registry) Resolve(name string) (*Provider, error) {
	if name != "" {
		if p, ok := r.providers[name]; ok {
			return p, nil
		}
	}
	if p, ok := r.providers[r.defaultProvider]; ok {
		return p, nil
	}
	return nil, errors.Errorf("no LLM provider configured for %q and no default available", name)
}
