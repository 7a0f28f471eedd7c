package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/infra/metrics"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/usecase/execution"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/usecase/report"
)

const (
	noReport         = "No report generated"
	fallbackAudience = "Previous campaign audience"
	eventTimeout     = 5 * time.Second
)

// Deps — зависимости контроллера. Events может быть nil: события о завершении не отправляются.
type Deps struct {
	Generator domain.PlanGenerator
	Engine    *execution.Engine
	Reporter  domain.Reporter
	Rewriter  domain.Rewriter
	Analyzer  domain.AudienceAnalyzer
	History   domain.HistoryRepo
	Logs      domain.LogSink
	Guard     domain.RewriteGuard
	Events    domain.EventQueue
	Clock     domain.Clock
	IDs       domain.IDGenerator

	// GenerateTimeout ограничивает вызов сервиса генерации; 0 — без ограничения.
	GenerateTimeout time.Duration
}

// Snapshot — копия состояния контроллера для отображения.
type Snapshot struct {
	State    State            `json:"state"`
	Brief    domain.Brief     `json:"brief"`
	Campaign *domain.Campaign `json:"campaign,omitempty"`
}

// Controller ведёт кампанию по жизненному циклу
// idle -> generating -> plan_ready -> executing -> completed.
type Controller struct {
	deps Deps
	log  zerolog.Logger

	mu       sync.Mutex
	state    State
	draft    domain.Brief
	campaign *domain.Campaign

	runs       sync.WaitGroup
	runCtx     context.Context
	cancelRuns context.CancelFunc
}

// NewController создаёт контроллер в состоянии idle.
func NewController(deps Deps, logger zerolog.Logger) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		deps:       deps,
		log:        logger,
		state:      StateIdle,
		runCtx:     ctx,
		cancelRuns: cancel,
	}
}

// Snapshot возвращает глубокую копию текущего состояния.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{State: c.state, Brief: c.draft}
	if c.campaign != nil {
		cp := c.campaign.Clone()
		snap.Campaign = &cp
	}
	return snap
}

// SubmitBrief проверяет бриф и запрашивает план у сервиса генерации.
func (c *Controller) SubmitBrief(ctx context.Context, brief domain.Brief) (domain.Campaign, error) {
	brief = domain.Brief{
		BrandName: strings.TrimSpace(brief.BrandName),
		Goal:      strings.TrimSpace(brief.Goal),
		Audience:  strings.TrimSpace(brief.Audience),
	}
	if missing := missingFields(brief); len(missing) > 0 {
		c.deps.Logs.Append("Error: Please fill in all required fields", domain.LogError)
		return domain.Campaign{}, &domain.ValidationError{Fields: missing}
	}

	c.mu.Lock()
	if err := checkTransition(c.state, StateGenerating); err != nil {
		c.mu.Unlock()
		return domain.Campaign{}, err
	}
	c.state = StateGenerating
	c.draft = brief
	c.campaign = nil
	c.mu.Unlock()

	c.deps.Logs.Append(fmt.Sprintf("Starting agentic workflow for %q...", brief.BrandName), domain.LogInfo)
	c.deps.Logs.Append("Agent: PLANNER initializing...", domain.LogInfo)

	genCtx := ctx
	if c.deps.GenerateTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, c.deps.GenerateTimeout)
		defer cancel()
	}
	generated, err := c.deps.Generator.Generate(genCtx, brief)
	if err != nil {
		metrics.IncGenerationFailure()
		c.log.Error().Err(err).Str("brand", brief.BrandName).Msg("lifecycle: генерация плана не удалась")
		c.deps.Logs.Append("Error: "+err.Error(), domain.LogError)
		c.setState(StateIdle)
		return domain.Campaign{}, fmt.Errorf("generate plan: %w", err)
	}

	c.deps.Logs.Append("Agent: PLANNER completed - Campaign plan generated", domain.LogSuccess)
	c.deps.Logs.Append(fmt.Sprintf("Generated %d posts for campaign", len(generated.Plan)), domain.LogInfo)

	now := c.deps.Clock.Now()
	items := defaultSchedule(generated.Plan, now)
	campaign := domain.Campaign{
		ID:              c.deps.IDs.NewID(),
		Brief:           brief,
		Entries:         make([]domain.PlanEntry, len(items)),
		GeneratedReport: generated.Report,
		CreatedAt:       now,
	}
	for i, item := range items {
		campaign.Entries[i] = domain.PlanEntry{Item: item}
	}

	c.mu.Lock()
	c.campaign = &campaign
	c.state = StatePlanReady
	out := campaign.Clone()
	c.mu.Unlock()

	c.log.Info().Str("campaign_id", campaign.ID).Int("posts", len(items)).Msg("lifecycle: план готов")
	c.deps.Logs.Append("Campaign plan ready for review", domain.LogSuccess)
	return out, nil
}

func missingFields(b domain.Brief) []string {
	var missing []string
	if b.BrandName == "" {
		missing = append(missing, "brand_name")
	}
	if b.Goal == "" {
		missing = append(missing, "goal")
	}
	if b.Audience == "" {
		missing = append(missing, "audience")
	}
	return missing
}

// EditItem применяет частичное обновление к посту index.
func (c *Controller) EditItem(_ context.Context, index int, patch domain.ItemPatch) (domain.ContentItem, error) {
	item, err := c.editItem("", index, patch)
	if err != nil {
		return domain.ContentItem{}, err
	}
	c.deps.Logs.Append(fmt.Sprintf("Post %d updated", index+1), domain.LogInfo)
	return item, nil
}

// editItem меняет пост под мьютексом. Непустой campaignID требует, чтобы
// активной была именно эта кампания.
func (c *Controller) editItem(campaignID string, index int, patch domain.ItemPatch) (domain.ContentItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.campaign == nil {
		return domain.ContentItem{}, domain.ErrNoCampaign
	}
	if campaignID != "" && c.campaign.ID != campaignID {
		return domain.ContentItem{}, fmt.Errorf("%w: campaign replaced", domain.ErrInvalidTransition)
	}
	if index < 0 || index >= len(c.campaign.Entries) {
		return domain.ContentItem{}, &domain.IndexError{Index: index, Len: len(c.campaign.Entries)}
	}
	if err := checkPatchStatus(patch); err != nil {
		return domain.ContentItem{}, err
	}
	entry := &c.campaign.Entries[index]
	// Платформа результата повторяет платформу поста, пока идёт прогон.
	if c.state == StateExecuting && patch.Platform != nil && *patch.Platform != entry.Item.Platform {
		return domain.ContentItem{}, fmt.Errorf("%w: platform change during execution", domain.ErrInvalidTransition)
	}
	entry.Item = patch.Apply(entry.Item)
	return entry.Item, nil
}

func checkPatchStatus(patch domain.ItemPatch) error {
	if patch.Status == nil {
		return nil
	}
	status := *patch.Status
	if !status.Valid() {
		return &domain.ValidationError{Fields: []string{"status"}, Message: fmt.Sprintf("unknown post status %q", status)}
	}
	if !status.Editable() {
		return &domain.ValidationError{Fields: []string{"status"}, Message: fmt.Sprintf("status %q is set by execution only", status)}
	}
	return nil
}

// RequestAIRewrite переписывает текст поста. Повторный запрос по тому же посту,
// пока первый не завершён, отклоняется.
func (c *Controller) RequestAIRewrite(ctx context.Context, index int) (domain.ContentItem, error) {
	c.mu.Lock()
	if c.campaign == nil {
		c.mu.Unlock()
		return domain.ContentItem{}, domain.ErrNoCampaign
	}
	if index < 0 || index >= len(c.campaign.Entries) {
		n := len(c.campaign.Entries)
		c.mu.Unlock()
		return domain.ContentItem{}, &domain.IndexError{Index: index, Len: n}
	}
	campaignID := c.campaign.ID
	item := c.campaign.Entries[index].Item
	c.mu.Unlock()

	release, ok, err := c.deps.Guard.Acquire(ctx, fmt.Sprintf("rewrite:%s:%d", campaignID, index))
	if err != nil {
		return domain.ContentItem{}, fmt.Errorf("acquire rewrite lock: %w", err)
	}
	if !ok {
		return domain.ContentItem{}, fmt.Errorf("%w: post %d", domain.ErrRewriteInProgress, index+1)
	}
	defer release()

	c.deps.Logs.Append(fmt.Sprintf("AI rewriting post %d...", index+1), domain.LogInfo)
	content, err := c.deps.Rewriter.Rewrite(ctx, item)
	if err != nil {
		c.deps.Logs.Append(fmt.Sprintf("Error: AI rewrite of post %d failed: %v", index+1, err), domain.LogError)
		return domain.ContentItem{}, fmt.Errorf("rewrite post %d: %w", index+1, err)
	}

	updated, err := c.editItem(campaignID, index, domain.ItemPatch{Content: &content})
	if err != nil {
		return domain.ContentItem{}, err
	}
	c.deps.Logs.Append(fmt.Sprintf("Post %d updated", index+1), domain.LogInfo)
	c.deps.Logs.Append(fmt.Sprintf("Post %d rewritten by AI", index+1), domain.LogSuccess)
	return updated, nil
}

// AnalyzeAudience возвращает рекомендации по аудитории. Пустой audience
// заменяется аудиторией из черновика брифа.
func (c *Controller) AnalyzeAudience(ctx context.Context, audience string) (string, error) {
	audience = strings.TrimSpace(audience)
	if audience == "" {
		c.mu.Lock()
		audience = c.draft.Audience
		c.mu.Unlock()
	}
	if audience == "" {
		c.deps.Logs.Append("Please enter a target audience first", domain.LogWarning)
		return "", &domain.ValidationError{Fields: []string{"audience"}}
	}

	c.deps.Logs.Append("AI analyzing target audience...", domain.LogInfo)
	insights, err := c.deps.Analyzer.Analyze(ctx, audience)
	if err != nil {
		c.log.Warn().Err(err).Msg("lifecycle: анализ аудитории не удался")
		c.deps.Logs.Append("Error: audience analysis failed: "+err.Error(), domain.LogError)
		return "", fmt.Errorf("analyze audience: %w", err)
	}
	c.deps.Logs.Append("Audience analysis complete - insights available", domain.LogSuccess)
	return insights, nil
}

// ApproveAndExecute одобряет план и синхронно исполняет его.
func (c *Controller) ApproveAndExecute(ctx context.Context) (domain.Campaign, error) {
	items, err := c.approve()
	if err != nil {
		return domain.Campaign{}, err
	}
	return c.execute(ctx, items)
}

// StartExecution одобряет план и исполняет его в фоне. Предусловия проверяются
// синхронно. Прогон не зависит от ctx запроса; остановить его можно через Shutdown.
func (c *Controller) StartExecution(_ context.Context) error {
	items, err := c.approve()
	if err != nil {
		return err
	}
	c.runs.Add(1)
	go func() {
		defer c.runs.Done()
		if _, err := c.execute(c.runCtx, items); err != nil {
			c.log.Error().Err(err).Msg("lifecycle: фоновый прогон завершился с ошибкой")
		}
	}()
	return nil
}

// Wait блокируется до завершения фоновых прогонов.
func (c *Controller) Wait() {
	c.runs.Wait()
}

// Shutdown отменяет фоновые прогоны и ждёт их завершения.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.cancelRuns()
	done := make(chan struct{})
	go func() {
		c.runs.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) approve() ([]domain.ContentItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.campaign == nil {
		return nil, domain.ErrNoCampaign
	}
	if c.state != StatePlanReady {
		return nil, fmt.Errorf("%w: approve in state %s", domain.ErrInvalidTransition, c.state)
	}
	c.state = StateExecuting
	c.campaign.Report = ""
	return c.campaign.Plan(), nil
}

func (c *Controller) execute(ctx context.Context, items []domain.ContentItem) (domain.Campaign, error) {
	c.deps.Logs.Append("Plan approved by user", domain.LogSuccess)
	c.deps.Logs.Append("Agent: EXECUTOR initializing...", domain.LogInfo)

	c.deps.Engine.Run(ctx, items, c.observe)

	c.deps.Logs.Append("Agent: EXECUTOR completed", domain.LogSuccess)
	c.deps.Logs.Append("Agent: REPORTER generating analysis...", domain.LogInfo)

	// Прогон доводится до конца и после отмены: отчёт и архив нужны всегда.
	finishCtx := context.WithoutCancel(ctx)

	c.mu.Lock()
	snapshot := c.campaign.Clone()
	c.mu.Unlock()

	text, err := c.deps.Reporter.Report(finishCtx, snapshot)
	if err != nil {
		c.log.Warn().Err(err).Str("campaign_id", snapshot.ID).Msg("lifecycle: отчёт не построен")
		c.deps.Logs.Append("Warning: Report generation failed", domain.LogWarning)
		text = noReport
	}
	if strings.TrimSpace(text) == "" {
		text = noReport
	}

	c.mu.Lock()
	c.campaign.Report = text
	final := c.campaign.Clone()
	c.mu.Unlock()

	c.deps.Logs.Append("Agent: REPORTER completed - Executive summary ready", domain.LogSuccess)

	entry := domain.HistoryEntry{
		ID:       c.deps.IDs.NewID(),
		Date:     c.deps.Clock.Now().Format(time.DateOnly),
		Brief:    final.Brief,
		Status:   domain.HistoryStatusCompleted,
		Campaign: &final,
	}
	archiveErr := c.deps.History.Append(finishCtx, entry.Clone())
	if archiveErr != nil {
		c.log.Error().Err(archiveErr).Str("campaign_id", final.ID).Msg("lifecycle: не удалось сохранить историю")
		c.deps.Logs.Append("Error: Could not archive campaign", domain.LogError)
	}

	c.setState(StateCompleted)
	metrics.IncCampaignRun()
	c.deps.Logs.Append("Campaign workflow completed successfully", domain.LogSuccess)

	if archiveErr == nil {
		c.publishCompletion(finishCtx, entry.ID, final)
	}

	totals := final.Totals()
	c.log.Info().
		Str("campaign_id", final.ID).
		Int("succeeded", totals.Succeeded).
		Int("failed", totals.Failed).
		Msg("lifecycle: прогон завершён")

	if archiveErr != nil {
		return final, fmt.Errorf("archive campaign: %w", archiveErr)
	}
	return final, nil
}

// observe записывает результат в активную кампанию и пишет ленту статуса.
func (c *Controller) observe(index int, r domain.ExecutionResult) {
	c.mu.Lock()
	if c.campaign == nil || index >= len(c.campaign.Entries) {
		c.mu.Unlock()
		panic(fmt.Sprintf("lifecycle: result %d has no plan entry", index))
	}
	entry := &c.campaign.Entries[index]
	entry.Result = r.Clone()
	switch r.Status {
	case domain.ResultSuccess:
		entry.Item.Status = domain.ItemStatusPublished
	case domain.ResultError:
		entry.Item.Status = domain.ItemStatusFailed
	}
	c.mu.Unlock()

	switch r.Status {
	case domain.ResultExecuting:
		c.deps.Logs.Append(fmt.Sprintf("Executing %s post...", r.Platform), domain.LogInfo)
	case domain.ResultSuccess:
		c.deps.Logs.Append(fmt.Sprintf("%s post published successfully", r.Platform), domain.LogSuccess)
	case domain.ResultError:
		if r.Error == execution.ReasonCancelled {
			c.deps.Logs.Append(fmt.Sprintf("%s post cancelled", r.Platform), domain.LogWarning)
			return
		}
		c.deps.Logs.Append(fmt.Sprintf("%s post failed (simulated error)", r.Platform), domain.LogError)
	}
}

func (c *Controller) publishCompletion(ctx context.Context, historyID string, campaign domain.Campaign) {
	if c.deps.Events == nil {
		return
	}
	totals := campaign.Totals()
	event := domain.CampaignEvent{
		ID:          c.deps.IDs.NewID(),
		HistoryID:   historyID,
		CampaignID:  campaign.ID,
		Brief:       campaign.Brief,
		Total:       totals.Posts,
		Succeeded:   totals.Succeeded,
		Failed:      totals.Failed,
		Engagements: totals.Engagements,
		Impressions: totals.Impressions,
		Report:      campaign.Report,
		CompletedAt: c.deps.Clock.Now(),
	}
	ctx, cancel := context.WithTimeout(ctx, eventTimeout)
	defer cancel()
	if err := c.deps.Events.Enqueue(ctx, event); err != nil {
		c.log.Warn().Err(err).Str("campaign_id", campaign.ID).Msg("lifecycle: событие о завершении не отправлено")
	}
}

// LoadFromHistory копирует архивную кампанию в активный слот.
func (c *Controller) LoadFromHistory(ctx context.Context, id string) (Snapshot, error) {
	c.mu.Lock()
	if c.state.Busy() {
		state := c.state
		c.mu.Unlock()
		return Snapshot{}, fmt.Errorf("%w: load in state %s", domain.ErrInvalidTransition, state)
	}
	c.mu.Unlock()

	entry, err := c.deps.History.Get(ctx, id)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load history %s: %w", id, err)
	}

	brief := entry.Brief
	if strings.TrimSpace(brief.Audience) == "" {
		brief.Audience = fallbackAudience
	}
	target := StateIdle
	var campaign *domain.Campaign
	if entry.Campaign != nil {
		cp := entry.Campaign.Clone()
		campaign = &cp
		target = StatePlanReady
	}

	c.mu.Lock()
	if err := checkTransition(c.state, target); err != nil {
		c.mu.Unlock()
		return Snapshot{}, err
	}
	c.state = target
	c.draft = brief
	c.campaign = campaign
	c.mu.Unlock()

	c.deps.Logs.Append("Loaded campaign: "+entry.Brief.Goal, domain.LogInfo)
	return c.Snapshot(), nil
}

// History возвращает архив, начиная с последней кампании.
func (c *Controller) History(ctx context.Context) ([]domain.HistoryEntry, error) {
	entries, err := c.deps.History.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}

// CheckHealth опрашивает сервис генерации. Ошибка только логируется.
func (c *Controller) CheckHealth(ctx context.Context) (domain.ServiceHealth, error) {
	health, err := c.deps.Generator.Health(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("lifecycle: сервис генерации недоступен")
		c.deps.Logs.Append("Warning: Could not connect to backend API", domain.LogWarning)
		return domain.ServiceHealth{}, err
	}
	c.deps.Logs.Append(fmt.Sprintf("API Status: %s - %s", health.Status, health.Service), domain.LogSuccess)
	return health, nil
}

// Calendar возвращает посты активной кампании за месяц month.
func (c *Controller) Calendar(month time.Time) []domain.CalendarEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.campaign == nil {
		return []domain.CalendarEvent{}
	}
	return report.Calendar(*c.campaign, month)
}

// ExportReport формирует markdown-выгрузку активной кампании.
func (c *Controller) ExportReport() (filename, content string, err error) {
	c.mu.Lock()
	if c.campaign == nil {
		c.mu.Unlock()
		return "", "", domain.ErrNoCampaign
	}
	campaign := c.campaign.Clone()
	c.mu.Unlock()
	return report.Filename(campaign.Brief.BrandName), report.ExportMarkdown(campaign, c.deps.Clock.Now()), nil
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := checkTransition(c.state, s); err != nil {
		panic(fmt.Sprintf("lifecycle: %v", err))
	}
	c.state = s
}
