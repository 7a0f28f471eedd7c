package publisher

import (
	"errors"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
)

// ErrVideoRequired возвращается для площадок, где нужен видеоролик.
var ErrVideoRequired = errors.New("YouTube requires video content")

// Rule проверяет пост для конкретной площадки.
type Rule func(item domain.ContentItem) error

// PlatformPolicy применяет правила по имени площадки. Площадки без правила проходят.
type PlatformPolicy struct {
	rules map[string]Rule
}

var _ domain.PublishPolicy = (*PlatformPolicy)(nil)

// NewPlatformPolicy создаёт пустую политику.
func NewPlatformPolicy() *PlatformPolicy {
	return &PlatformPolicy{rules: make(map[string]Rule)}
}

// DefaultPolicy — правило по умолчанию: YouTube всегда отклоняется.
func DefaultPolicy() *PlatformPolicy {
	return NewPlatformPolicy().With(domain.PlatformYouTube, func(domain.ContentItem) error {
		return ErrVideoRequired
	})
}

// With регистрирует правило для площадки и возвращает политику.
func (p *PlatformPolicy) With(platform domain.Platform, rule Rule) *PlatformPolicy {
	p.rules[string(platform)] = rule
	return p
}

// Check применяет правило площадки поста.
func (p *PlatformPolicy) Check(item domain.ContentItem) error {
	rule, ok := p.rules[string(item.Platform)]
	if !ok || rule == nil {
		return nil
	}
	return rule(item)
}
