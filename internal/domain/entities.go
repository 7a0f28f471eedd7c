package domain

import "time"

// Platform обозначает площадку публикации. Набор открыт: неизвестные значения
// проходят через систему без ошибок.
type Platform string

const (
	PlatformLinkedIn Platform = "LinkedIn"
	PlatformYouTube  Platform = "YouTube"
	PlatformThreads  Platform = "Threads"
)

// ItemStatus — редакционный статус поста. Носит справочный характер.
type ItemStatus string

const (
	ItemStatusDraft     ItemStatus = "draft"
	ItemStatusScheduled ItemStatus = "scheduled"
	ItemStatusPublished ItemStatus = "published"
	ItemStatusFailed    ItemStatus = "failed"
)

// Valid сообщает, что статус входит в известный набор.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusDraft, ItemStatusScheduled, ItemStatusPublished, ItemStatusFailed:
		return true
	}
	return false
}

// Editable сообщает, что статус можно выставить вручную.
// published и failed выставляет только исполнение.
func (s ItemStatus) Editable() bool {
	return s == ItemStatusDraft || s == ItemStatusScheduled
}

// ResultStatus — статус попытки публикации.
type ResultStatus string

const (
	ResultPending   ResultStatus = "pending"
	ResultExecuting ResultStatus = "executing"
	ResultSuccess   ResultStatus = "success"
	ResultError     ResultStatus = "error"
)

// Terminal сообщает, что статус финальный.
func (s ResultStatus) Terminal() bool {
	return s == ResultSuccess || s == ResultError
}

// ContentItem описывает запланированный пост.
type ContentItem struct {
	Platform      Platform   `json:"platform"`
	Content       string     `json:"content"`
	ImageIdea     string     `json:"image_idea,omitempty"`
	MediaURL      string     `json:"media_url,omitempty"`
	ScheduledDate string     `json:"scheduled_date,omitempty"`
	ScheduledTime string     `json:"scheduled_time,omitempty"`
	Status        ItemStatus `json:"status,omitempty"`
}

// ItemPatch содержит частичное обновление поста; nil-поля не меняются.
type ItemPatch struct {
	Platform      *Platform   `json:"platform,omitempty"`
	Content       *string     `json:"content,omitempty"`
	ImageIdea     *string     `json:"image_idea,omitempty"`
	MediaURL      *string     `json:"media_url,omitempty"`
	ScheduledDate *string     `json:"scheduled_date,omitempty"`
	ScheduledTime *string     `json:"scheduled_time,omitempty"`
	Status        *ItemStatus `json:"status,omitempty"`
}

// Apply возвращает пост с применёнными изменениями.
func (p ItemPatch) Apply(item ContentItem) ContentItem {
	if p.Platform != nil {
		item.Platform = *p.Platform
	}
	if p.Content != nil {
		item.Content = *p.Content
	}
	if p.ImageIdea != nil {
		item.ImageIdea = *p.ImageIdea
	}
	if p.MediaURL != nil {
		item.MediaURL = *p.MediaURL
	}
	if p.ScheduledDate != nil {
		item.ScheduledDate = *p.ScheduledDate
	}
	if p.ScheduledTime != nil {
		item.ScheduledTime = *p.ScheduledTime
	}
	if p.Status != nil {
		item.Status = *p.Status
	}
	return item
}

// Engagement хранит синтетические метрики успешной публикации.
type Engagement struct {
	Likes       int `json:"likes"`
	Shares      int `json:"shares"`
	Comments    int `json:"comments"`
	Impressions int `json:"impressions"`
	Reach       int `json:"reach"`
}

// ExecutionResult — исход одной попытки публикации.
type ExecutionResult struct {
	ID         string       `json:"id"`
	Platform   Platform     `json:"platform"`
	Status     ResultStatus `json:"status"`
	Metrics    *Engagement  `json:"metrics,omitempty"`
	Error      string       `json:"error,omitempty"`
	ExecutedAt *time.Time   `json:"executed_at,omitempty"`
}

// PostState — объединённое состояние поста и его публикации.
type PostState string

const (
	PostDraft      PostState = "draft"
	PostScheduled  PostState = "scheduled"
	PostPublishing PostState = "publishing"
	PostPublished  PostState = "published"
	PostFailed     PostState = "failed"
)

// PlanEntry связывает пост с результатом его публикации по позиции.
type PlanEntry struct {
	Item   ContentItem      `json:"item"`
	Result *ExecutionResult `json:"result,omitempty"`
}

// State сводит редакционный статус и результат в одно значение.
func (e PlanEntry) State() PostState {
	if e.Result != nil {
		switch e.Result.Status {
		case ResultSuccess:
			return PostPublished
		case ResultError:
			return PostFailed
		default:
			return PostPublishing
		}
	}
	switch e.Item.Status {
	case ItemStatusScheduled:
		return PostScheduled
	case ItemStatusPublished:
		return PostPublished
	case ItemStatusFailed:
		return PostFailed
	default:
		return PostDraft
	}
}

// Brief — исходные данные оператора.
type Brief struct {
	BrandName string `json:"brand_name"`
	Goal      string `json:"goal"`
	Audience  string `json:"audience"`
}

// Campaign — активная кампания.
type Campaign struct {
	ID              string      `json:"id"`
	Brief           Brief       `json:"brief"`
	Entries         []PlanEntry `json:"entries"`
	Report          string      `json:"report,omitempty"`
	GeneratedReport string      `json:"generated_report,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

// Plan возвращает посты в порядке исполнения.
func (c Campaign) Plan() []ContentItem {
	out := make([]ContentItem, 0, len(c.Entries))
	for _, e := range c.Entries {
		out = append(out, e.Item)
	}
	return out
}

// Results возвращает результаты публикации. До запуска исполнения список пуст.
func (c Campaign) Results() []ExecutionResult {
	out := make([]ExecutionResult, 0, len(c.Entries))
	for _, e := range c.Entries {
		if e.Result != nil {
			out = append(out, *e.Result)
		}
	}
	return out
}

// Totals — сводка по результатам публикации.
type Totals struct {
	Posts       int `json:"posts"`
	Succeeded   int `json:"succeeded"`
	Failed      int `json:"failed"`
	Engagements int `json:"engagements"`
	Impressions int `json:"impressions"`
}

// Totals суммирует метрики. Если показов нет, они оцениваются как likes*15 + shares*50.
func (c Campaign) Totals() Totals {
	t := Totals{Posts: len(c.Entries)}
	for _, e := range c.Entries {
		if e.Result == nil {
			continue
		}
		switch e.Result.Status {
		case ResultSuccess:
			t.Succeeded++
		case ResultError:
			t.Failed++
		}
		m := e.Result.Metrics
		if m == nil {
			continue
		}
		t.Engagements += m.Likes + m.Shares + m.Comments
		if m.Impressions > 0 {
			t.Impressions += m.Impressions
		} else {
			t.Impressions += m.Likes*15 + m.Shares*50
		}
	}
	return t
}

// Clone возвращает глубокую копию кампании.
func (c Campaign) Clone() Campaign {
	out := c
	if c.Entries != nil {
		out.Entries = make([]PlanEntry, len(c.Entries))
		for i, e := range c.Entries {
			out.Entries[i] = PlanEntry{Item: e.Item, Result: e.Result.Clone()}
		}
	}
	return out
}

// Clone возвращает глубокую копию результата; nil остаётся nil.
func (r *ExecutionResult) Clone() *ExecutionResult {
	if r == nil {
		return nil
	}
	cp := *r
	if r.Metrics != nil {
		m := *r.Metrics
		cp.Metrics = &m
	}
	if r.ExecutedAt != nil {
		t := *r.ExecutedAt
		cp.ExecutedAt = &t
	}
	return &cp
}

// HistoryEntry — неизменяемый снимок завершённой кампании.
type HistoryEntry struct {
	ID       string    `json:"id"`
	Date     string    `json:"date"`
	Brief    Brief     `json:"brief"`
	Status   string    `json:"status"`
	Campaign *Campaign `json:"campaign,omitempty"`
}

// HistoryStatusCompleted — статус записи после исполнения.
const HistoryStatusCompleted = "completed"

// Clone возвращает глубокую копию записи.
func (h HistoryEntry) Clone() HistoryEntry {
	out := h
	if h.Campaign != nil {
		c := h.Campaign.Clone()
		out.Campaign = &c
	}
	return out
}

// LogType — уровень сообщения для оператора.
type LogType string

const (
	LogInfo    LogType = "info"
	LogSuccess LogType = "success"
	LogError   LogType = "error"
	LogWarning LogType = "warning"
)

// LogEntry — сообщение в ленте статуса.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Type      LogType   `json:"type"`
}

// CalendarEvent — пост на календарной сетке.
type CalendarEvent struct {
	ID       string     `json:"id"`
	Platform Platform   `json:"platform"`
	Content  string     `json:"content"`
	Date     string     `json:"date"`
	Time     string     `json:"time"`
	Status   ItemStatus `json:"status"`
}
