package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoCampaign возвращается, если активной кампании нет.
	ErrNoCampaign = errors.New("нет активной кампании")
	// ErrInvalidTransition возвращается при недопустимом переходе жизненного цикла.
	ErrInvalidTransition = errors.New("недопустимый переход состояния кампании")
	// ErrRewriteInProgress возвращается, если переписывание поста уже идёт.
	ErrRewriteInProgress = errors.New("переписывание поста уже выполняется")
	// ErrHistoryNotFound возвращается, если запись истории не найдена.
	ErrHistoryNotFound = errors.New("запись истории не найдена")
)

// ValidationError сообщает о незаполненных или некорректных полях.
// Пустой Message означает незаполненные обязательные поля.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "Please fill in all required fields: " + strings.Join(e.Fields, ", ")
}

// IndexError сообщает об индексе поста вне плана.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("post index %d out of range [0, %d)", e.Index, e.Len)
}

// ExternalServiceError описывает сбой сервиса генерации плана.
// StatusCode равен нулю при сетевой ошибке.
type ExternalServiceError struct {
	StatusCode int
	Err        error
}

func (e *ExternalServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error: %d", e.StatusCode)
	}
	if e.Err != nil {
		return "connection error: " + e.Err.Error()
	}
	return "connection error"
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}
