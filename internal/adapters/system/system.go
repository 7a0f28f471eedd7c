package system

import (
	"time"

	"github.com/google/uuid"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
)

// Clock — системные часы в заданном часовом поясе.
type Clock struct {
	Location *time.Location
}

var _ domain.Clock = Clock{}

// Now возвращает текущее время.
func (c Clock) Now() time.Time {
	if c.Location == nil {
		return time.Now().UTC()
	}
	return time.Now().In(c.Location)
}

// UUIDGenerator выдаёт UUIDv4.
type UUIDGenerator struct{}

var _ domain.IDGenerator = UUIDGenerator{}

// NewID возвращает новый идентификатор.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}
