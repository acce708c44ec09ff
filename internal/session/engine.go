// Package session runs a screening session: it sequences bags across the
// belt, applies operator input to both views, grades answers, and produces
// the final summary.
//
// Every exported method posts its work onto the loop scheduler, so callers on
// any goroutine may use them. Listeners registered with On run on the loop.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"xsim/internal/api"
	"xsim/internal/belt"
	"xsim/internal/config"
	"xsim/internal/filter"
	"xsim/internal/loop"
	"xsim/internal/model"
	"xsim/internal/surface"
	"xsim/internal/viewport"
	"xsim/pkg/colorutil"
	"xsim/pkg/geometry"

	"golang.org/x/sync/errgroup"
)

// Phase is the engine's lifecycle state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhasePresenting
	PhasePaused
	PhaseGrading
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhasePresenting:
		return "presenting"
	case PhasePaused:
		return "paused"
	case PhaseGrading:
		return "grading"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Reasons a session ends.
const (
	ReasonTimeUp  = "time"
	ReasonAborted = "aborted"
	ReasonAFK     = "afk"
)

// Service supplies session data.
type Service interface {
	Categories(ctx context.Context) ([]model.ThreatCategory, error)
	RandomBaggage(ctx context.Context, area int, typeID string) ([]model.BaggageRecord, error)
	User(ctx context.Context, id int) (api.User, error)
	surface.Loader
}

// Submitter receives finished sessions.
type Submitter interface {
	SaveTraining(ctx context.Context, s model.Summary) error
	SaveCorrectiveLog(ctx context.Context, correctiveID int, s model.Summary) error
	AddCorrectiveTime(ctx context.Context, correctiveID, minutes int) error
}

// Recorder keeps session history.
type Recorder interface {
	Record(ctx context.Context, s model.Summary) (int64, error)
}

// SummaryCache keeps the most recent summary.
type SummaryCache interface {
	SetLastSummary(s model.Summary)
	Save() error
}

// Params selects what is screened.
type Params struct {
	Area         int
	TypeID       string
	UserID       int
	CorrectiveID int
}

// Corrective reports whether results go to a corrective assignment.
func (p Params) Corrective() bool { return p.CorrectiveID > 0 }

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithSubmitter overrides where results are submitted.
func WithSubmitter(s Submitter) Option {
	return func(e *Engine) { e.submitter = s }
}

// WithHistory records finished sessions.
func WithHistory(r Recorder) Option {
	return func(e *Engine) { e.history = r }
}

// WithSummaryCache caches the last summary.
func WithSummaryCache(c SummaryCache) Option {
	return func(e *Engine) { e.cache = c }
}

// SubmitTimeout bounds result submission.
const SubmitTimeout = 30 * time.Second

// view is one projection: its surface, transform, belt, and overlays.
type view struct {
	id      model.View
	surface *surface.Surface
	vp      *viewport.State
	belt    *belt.Controller
	img     image.Image
	filter  filter.Kind
	marker  *geometry.Point2D
}

// Engine is a screening session.
type Engine struct {
	cfg       *config.Config
	params    Params
	svc       Service
	sched     loop.Scheduler
	logger    *slog.Logger
	submitter Submitter
	history   Recorder
	cache     SummaryCache
	enhance   filter.EnhanceMode

	mu        sync.RWMutex
	listeners map[EventType][]Listener

	ctx    context.Context
	cancel context.CancelFunc
	work     sync.WaitGroup
	done     chan struct{}
	doneOnce sync.Once

	views [2]*view

	phase      Phase
	started    bool
	categories []Category
	names      map[int]string
	operator   string

	queue   []model.BaggageRecord
	index   int
	current *model.BaggageRecord
	gen     uint64

	selected        int
	lastClickInside bool
	presentedAt     time.Time
	activeFilter    filter.Kind

	score       int
	hits        int
	falseAlarms int
	stats       map[int]model.CategoryStat
	wrong       []model.WrongAnswer
	reactions   []float64

	remaining  time.Duration
	stopTimer  func()
	stopRetry  func()
	stopLoad   context.CancelFunc
	afk        *afkMonitor
	afkPending bool
	summary    *model.Summary
}

// New creates an engine. It owns two surfaces sized to the configured canvas.
func New(cfg *config.Config, params Params, svc Service, sched loop.Scheduler, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	enhance, err := filter.ParseEnhanceMode(cfg.SuperEnhance)
	if err != nil {
		return nil, err
	}
	dragMode, err := viewport.ParseDragMode(cfg.DragMode)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:       cfg,
		params:    params,
		svc:       svc,
		sched:     sched,
		logger:    slog.Default(),
		enhance:   enhance,
		listeners: make(map[EventType][]Listener),
		names:     make(map[int]string),
		stats:     make(map[int]model.CategoryStat),
		remaining: cfg.CourseDuration(),
		done:      make(chan struct{}),
	}
	if s, ok := svc.(Submitter); ok {
		e.submitter = s
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, id := range model.Views {
		v := &view{
			id:      id,
			surface: surface.New(cfg.Canvas.Width, cfg.Canvas.Height),
			vp:      viewport.New(cfg.ZoomLimits(), dragMode),
		}
		v.belt = belt.New(sched, cfg.BeltSpeed, cfg.Canvas.Width, func(x float64) {
			v.vp.SetBeltX(x)
			e.redraw(v)
		})
		e.views[id] = v
	}
	e.afk = newAFKMonitor(sched, cfg.IdleWindow, cfg.MaxStrikes, e.onAFK)
	return e, nil
}

// Surface returns the pixel buffer of a view.
func (e *Engine) Surface(v model.View) *surface.Surface {
	return e.views[v].surface
}

// Start begins the session.
func (e *Engine) Start(ctx context.Context) {
	e.sched.Post(func() { e.start(ctx) })
}

// Abort ends the session early.
func (e *Engine) Abort() {
	e.sched.Post(func() { e.finish(ReasonAborted) })
}

// Done is closed once the session has finished.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Wait blocks until background work, including result submission, is done.
// Call it after Done is closed so that submission has been started.
func (e *Engine) Wait() {
	e.work.Wait()
}

// SelectCategory chooses an answer.
func (e *Engine) SelectCategory(id int) {
	e.sched.Post(func() {
		e.afk.activity()
		if !e.accepting() {
			return
		}
		if _, ok := e.categoryLabel(id); !ok {
			return
		}
		e.selected = id
		e.emit(EventSelection, id)
		e.emitHUD()
	})
}

// Confirm grades the current bag with the selected category.
func (e *Engine) Confirm() {
	e.sched.Post(func() {
		e.afk.activity()
		if !e.accepting() {
			return
		}
		if e.selected == 0 {
			e.emit(EventNotice, Notice{Message: "Select a category first"})
			return
		}
		e.grade(e.selected, false)
	})
}

// Click registers a pointer click at surface coordinates on a view.
func (e *Engine) Click(v model.View, x, y float64) {
	e.sched.Post(func() {
		e.afk.activity()
		if e.phase != PhasePaused || e.afkPending || e.current == nil {
			return
		}
		e.click(e.views[v], geometry.Point2D{X: x, Y: y})
	})
}

// Zoom changes a view's scale by one notch in the direction of delta.
func (e *Engine) Zoom(v model.View, delta float64) {
	e.sched.Post(func() {
		e.afk.activity()
		if !e.accepting() {
			return
		}
		vw := e.views[v]
		vw.vp.Zoom(delta)
		e.redraw(vw)
	})
}

// BeginDrag starts a pan gesture on a view.
func (e *Engine) BeginDrag(v model.View) {
	e.sched.Post(func() {
		e.afk.activity()
		if !e.accepting() {
			return
		}
		e.views[v].vp.BeginDrag()
	})
}

// Drag pans a view by (dx, dy) surface pixels during a gesture.
func (e *Engine) Drag(v model.View, dx, dy float64) {
	e.sched.Post(func() {
		e.afk.activity()
		if !e.accepting() {
			return
		}
		vw := e.views[v]
		if vw.vp.Pan(dx, dy) {
			e.redraw(vw)
		}
	})
}

// EndDrag finishes a pan gesture.
func (e *Engine) EndDrag(v model.View) {
	e.sched.Post(func() { e.views[v].vp.EndDrag() })
}

// Key handles a key press by name: Q, W, A, S, D, E, R, or Space.
func (e *Engine) Key(key string) {
	e.sched.Post(func() {
		e.afk.activity()
		if !e.accepting() {
			return
		}
		action, kind := KeyAction(key)
		switch action {
		case ActionFilter:
			e.setFilter(kind)
		case ActionReset:
			e.resetViews()
		case ActionTogglePause:
			e.togglePause()
		}
	})
}

// TogglePause pauses or resumes both belts.
func (e *Engine) TogglePause() {
	e.sched.Post(func() {
		e.afk.activity()
		if !e.accepting() {
			return
		}
		e.togglePause()
	})
}

// Activity records operator activity such as pointer movement.
func (e *Engine) Activity() {
	e.sched.Post(e.afk.activity)
}

// AcknowledgeAFK dismisses an idle warning and resumes the belts.
func (e *Engine) AcknowledgeAFK() {
	e.sched.Post(func() {
		if e.phase == PhaseFinished || !e.afk.acknowledge() {
			return
		}
		e.afkPending = false
		if e.phase == PhasePaused {
			e.setPaused(false)
		}
		e.emitHUD()
	})
}

func (e *Engine) accepting() bool {
	if e.afkPending {
		return false
	}
	return e.phase == PhasePresenting || e.phase == PhasePaused
}

func (e *Engine) start(ctx context.Context) {
	// Finished is terminal, including after an Abort before Start.
	if e.started || e.phase == PhaseFinished {
		return
	}
	e.started = true
	e.ctx, e.cancel = context.WithCancel(ctx)
	e.phase = PhaseLoading

	e.stopTimer = loop.Every(e.sched, time.Second, e.tick)
	e.afk.activity()
	e.emitHUD()

	var (
		cats  []model.ThreatCategory
		batch []model.BaggageRecord
		user  api.User
	)
	e.background(func(ctx context.Context) {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			if cats, err = e.svc.Categories(gctx); err != nil {
				e.logger.Warn("failed to fetch categories", "error", err)
				cats = nil
			}
			return nil
		})
		g.Go(func() error {
			var err error
			if batch, err = e.svc.RandomBaggage(gctx, e.params.Area, e.params.TypeID); err != nil {
				e.logger.Warn("failed to fetch baggage batch", "area", e.params.Area, "error", err)
				batch = nil
			}
			return nil
		})
		if e.params.UserID > 0 {
			g.Go(func() error {
				var err error
				if user, err = e.svc.User(gctx, e.params.UserID); err != nil {
					e.logger.Warn("failed to fetch operator", "user", e.params.UserID, "error", err)
				}
				return nil
			})
		}
		_ = g.Wait()

		e.sched.Post(func() {
			if e.phase == PhaseFinished {
				return
			}
			e.setCategories(cats)
			e.operator = user.DisplayName()
			e.emit(EventOperator, e.operator)
			e.queue = batch
			e.index = 0
			e.present()
		})
	})
}

// background runs fn off the loop, tracked by Wait.
func (e *Engine) background(fn func(ctx context.Context)) {
	ctx := e.ctx
	e.work.Add(1)
	go func() {
		defer e.work.Done()
		fn(ctx)
	}()
}

func (e *Engine) setCategories(all []model.ThreatCategory) {
	for _, c := range all {
		e.names[c.ID] = c.Name
	}
	e.categories = AreaCategories(all, e.params.Area)
	e.emit(EventCategories, append([]Category(nil), e.categories...))
}

func (e *Engine) categoryLabel(id int) (string, bool) {
	for _, c := range e.categories {
		if c.ID == id {
			return c.Label, true
		}
	}
	return "", false
}

func (e *Engine) categoryName(id int) string {
	if name, ok := e.names[id]; ok && name != "" {
		return name
	}
	return model.UnknownAnswer
}

// present loads the bag at the current index.
func (e *Engine) present() {
	if e.phase == PhaseFinished {
		return
	}
	e.clearViews()
	e.phase = PhaseLoading
	if len(e.queue) == 0 {
		e.scheduleRetry()
		e.emitHUD()
		return
	}

	rec := e.queue[e.index]
	e.current = &rec
	e.selected = 0
	e.lastClickInside = false
	e.gen++
	gen := e.gen
	e.emitHUD()

	loadCtx, cancel := context.WithTimeout(e.ctx, e.cfg.LoadTimeout)
	e.stopLoad = cancel
	var imgs [2]image.Image
	e.background(func(context.Context) {
		defer cancel()
		g, gctx := errgroup.WithContext(loadCtx)
		for _, v := range model.Views {
			g.Go(func() error {
				img, err := surface.Load(gctx, e.svc, rec.URL(v))
				if err != nil {
					return fmt.Errorf("%s view: %w", v, err)
				}
				imgs[v] = img
				return nil
			})
		}
		err := g.Wait()
		e.sched.Post(func() { e.loaded(gen, imgs, err) })
	})
}

func (e *Engine) loaded(gen uint64, imgs [2]image.Image, err error) {
	if gen != e.gen || e.phase == PhaseFinished {
		return
	}
	e.stopLoad = nil
	if err != nil {
		e.logger.Warn("skipping bag", "id", e.current.ID, "error", err)
		e.emit(EventError, ErrorEvent{Op: "load", Err: err})
		e.advance()
		return
	}

	for _, v := range e.views {
		v.img = imgs[v.id]
		v.vp.ResetBelt(v.img.Bounds().Dx())
	}
	e.phase = PhasePresenting
	e.presentedAt = e.sched.Now()

	top, side := e.views[model.ViewTop], e.views[model.ViewSide]
	top.belt.Start(top.img.Bounds().Dx(), func() { e.beltExit(gen) })
	side.belt.Start(side.img.Bounds().Dx(), nil)
	if e.afkPending {
		e.setPaused(true)
	}
	for _, v := range e.views {
		e.redraw(v)
	}

	e.emit(EventPresented, Presented{Record: *e.current, Index: e.index})
	e.emitHUD()
}

func (e *Engine) beltExit(gen uint64) {
	if gen != e.gen || e.phase != PhasePresenting {
		return
	}
	e.grade(0, true)
}

func (e *Engine) click(v *view, p geometry.Point2D) {
	imgPt, ok := v.vp.ScreenToImage(p)
	if !ok {
		return
	}
	inside := false
	if e.current.Position != nil {
		if box, ok := e.current.Position.Box(v.id, e.cfg.SideOffsetY); ok {
			inside = box.Contains(imgPt)
		}
	}
	e.lastClickInside = inside

	for _, other := range e.views {
		if other.marker != nil && other != v {
			other.marker = nil
			e.redraw(other)
		}
	}
	v.marker = &imgPt
	e.redraw(v)
	e.emit(EventClick, Click{View: v.id, Point: imgPt, Inside: inside})
}

func (e *Engine) grade(selected int, missed bool) {
	rec := *e.current
	e.phase = PhaseGrading
	for _, v := range e.views {
		v.belt.Stop()
	}

	correct := !missed && Grade(rec.CategoryID, selected, e.lastClickInside, e.cfg.ClearCategoryID)
	st := e.stats[rec.CategoryID]
	st.Total++
	if correct {
		st.Hits++
		e.score++
		e.hits++
	} else {
		e.falseAlarms++
		user := model.MissedAnswer
		if !missed {
			user = e.categoryName(selected)
		}
		e.wrong = append(e.wrong, model.WrongAnswer{
			BaggageID: rec.ID,
			Code:      rec.Code,
			Correct:   e.categoryName(rec.CategoryID),
			User:      user,
		})
	}
	e.stats[rec.CategoryID] = st
	if !missed {
		e.reactions = append(e.reactions, e.sched.Now().Sub(e.presentedAt).Seconds())
	}

	e.logger.Debug("graded",
		"bag", rec.ID,
		"expected", rec.CategoryID,
		"selected", selected,
		"inside", e.lastClickInside,
		"correct", correct,
		"missed", missed)
	e.emit(EventGraded, Graded{
		Record:   rec,
		Selected: selected,
		Correct:  correct,
		Missed:   missed,
		Expected: e.categoryName(rec.CategoryID),
	})
	e.advance()
}

// advance moves to the next bag, fetching a new batch when the queue is spent.
func (e *Engine) advance() {
	if e.phase == PhaseFinished {
		return
	}
	e.clearViews()
	e.index++
	if e.index < len(e.queue) {
		e.present()
		return
	}
	e.index = 0
	e.phase = PhaseLoading
	e.fetchBatch(e.present)
}

func (e *Engine) fetchBatch(then func()) {
	e.background(func(ctx context.Context) {
		batch, err := e.svc.RandomBaggage(ctx, e.params.Area, e.params.TypeID)
		e.sched.Post(func() {
			if e.phase == PhaseFinished {
				return
			}
			switch {
			case err != nil:
				e.logger.Warn("failed to refetch baggage, reusing batch", "error", err)
				e.emit(EventError, ErrorEvent{Op: "fetch", Err: err})
			case len(batch) == 0:
				e.logger.Warn("service returned no baggage")
			default:
				e.queue = batch
				e.index = 0
			}
			then()
		})
	})
}

func (e *Engine) scheduleRetry() {
	if e.stopRetry != nil {
		return
	}
	e.stopRetry = e.sched.AfterFunc(e.cfg.RetryDelay, func() {
		e.stopRetry = nil
		e.fetchBatch(func() {
			if len(e.queue) > 0 {
				e.present()
				return
			}
			e.scheduleRetry()
		})
	})
}

// clearViews drops the current images and overlays.
func (e *Engine) clearViews() {
	if e.stopLoad != nil {
		e.stopLoad()
		e.stopLoad = nil
	}
	for _, v := range e.views {
		v.belt.Stop()
		v.img = nil
		v.marker = nil
		v.vp.Reset()
		v.vp.SetPaused(false)
		v.vp.Forget()
		v.surface.Clear()
		e.emit(EventFrame, Frame{View: v.id})
	}
}

// redraw re-renders a view from its source image, then re-applies the
// active filter and overlays.
func (e *Engine) redraw(v *view) {
	v.surface.Clear()
	if v.img == nil {
		e.emit(EventFrame, Frame{View: v.id})
		return
	}
	b := v.img.Bounds()
	rect := v.vp.Layout(b.Dx(), b.Dy(), e.cfg.Canvas.Height)
	v.surface.DrawImage(v.img, rect)

	if v.filter != filter.Normal {
		kind := v.filter
		v.surface.Edit(func(px *image.RGBA) {
			filter.Apply(kind, px, filter.Options{Enhance: e.enhance})
		})
	}
	if v.marker != nil {
		if p, ok := v.vp.ImageToScreen(*v.marker); ok {
			v.surface.DrawMarker(p.X, p.Y, v.vp.EffectiveScale())
		}
	}
	if v.vp.Paused() {
		v.surface.DrawLabel(12, 24, "PAUSED", colorutil.White)
	}
	e.emit(EventFrame, Frame{View: v.id})
}

func (e *Engine) setFilter(kind filter.Kind) {
	e.activeFilter = kind
	for _, v := range e.views {
		v.filter = kind
		e.redraw(v)
	}
	e.emit(EventFilterChanged, FilterChanged{Kind: kind})
	e.emitHUD()
}

func (e *Engine) resetViews() {
	e.activeFilter = filter.Normal
	for _, v := range e.views {
		v.filter = filter.Normal
		v.vp.Reset()
		e.redraw(v)
	}
	e.emit(EventFilterChanged, FilterChanged{Kind: filter.Normal})
	e.emitHUD()
}

func (e *Engine) togglePause() {
	e.setPaused(e.phase == PhasePresenting)
}

func (e *Engine) setPaused(paused bool) {
	if paused && e.phase != PhasePresenting || !paused && e.phase != PhasePaused {
		return
	}
	if paused {
		e.phase = PhasePaused
	} else {
		e.phase = PhasePresenting
	}
	for _, v := range e.views {
		if paused {
			v.belt.Pause()
		} else {
			v.belt.Resume()
		}
		v.vp.SetPaused(paused)
		e.redraw(v)
	}
	e.emit(EventPauseToggled, PauseToggled{Paused: paused})
	e.emitHUD()
}

func (e *Engine) tick() {
	if e.phase == PhaseFinished {
		return
	}
	if e.cfg.PauseStopsClock && e.phase == PhasePaused {
		return
	}
	e.remaining -= time.Second
	if e.remaining < 0 {
		e.remaining = 0
	}
	e.emit(EventTick, Tick{Remaining: e.remaining})
	e.emitHUD()
	if e.remaining == 0 {
		e.finish(ReasonTimeUp)
	}
}

func (e *Engine) onAFK(strike int) {
	if e.phase == PhaseFinished {
		return
	}
	e.afkPending = true
	e.setPaused(true)
	e.logger.Info("operator idle", "strike", strike, "max", e.cfg.MaxStrikes)
	e.emit(EventAFKWarning, AFKWarning{Strike: strike, Max: e.cfg.MaxStrikes})
	e.emitHUD()
	if e.afk.exhausted() {
		e.finish(ReasonAFK)
	}
}

// finish ends the session exactly once.
func (e *Engine) finish(reason string) {
	if e.phase == PhaseFinished {
		return
	}
	e.phase = PhaseFinished
	if e.stopTimer != nil {
		e.stopTimer()
	}
	if e.stopRetry != nil {
		e.stopRetry()
		e.stopRetry = nil
	}
	e.afk.stop()
	for _, v := range e.views {
		v.belt.Stop()
	}
	if e.stopLoad != nil {
		e.stopLoad()
		e.stopLoad = nil
	}

	sum := e.buildSummary(reason)
	e.summary = &sum
	e.logger.Info("session finished",
		"reason", reason,
		"score", sum.Score,
		"fars", sum.FalseAlarms,
		"efficiency", sum.Efficiency,
		"credit", sum.Credit)

	if e.cache != nil {
		e.cache.SetLastSummary(sum)
		if err := e.cache.Save(); err != nil {
			e.logger.Warn("failed to cache summary", "error", err)
		}
	}
	e.emitHUD()
	e.emit(EventFinished, sum)
	e.submit(sum)
	if e.cancel != nil {
		e.cancel()
	}
	e.doneOnce.Do(func() { close(e.done) })
}

func (e *Engine) buildSummary(reason string) model.Summary {
	eff := Efficiency(e.hits, e.falseAlarms)
	mean, std := ReactionStats(e.reactions)

	stats := make(map[int]model.CategoryStat, len(e.stats))
	for k, v := range e.stats {
		stats[k] = v
	}
	used := e.cfg.CourseDuration() - e.remaining
	if used < 0 {
		used = 0
	}
	corrID := ""
	if e.params.Corrective() {
		corrID = fmt.Sprint(e.params.CorrectiveID)
	}
	return model.Summary{
		Operator:       e.operator,
		Score:          e.score,
		Hits:           e.hits,
		FalseAlarms:    e.falseAlarms,
		Efficiency:     eff,
		Credit:         e.cfg.Credit(eff),
		CategoryStats:  stats,
		WrongAnswers:   append([]model.WrongAnswer(nil), e.wrong...),
		TimeUsed:       used,
		ReactionMean:   mean,
		ReactionStdDev: std,
		Area:           e.params.Area,
		Corrective:     e.params.Corrective(),
		CorrectiveID:   corrID,
		Reason:         reason,
		FinishedAt:     e.sched.Now(),
	}
}

// submit sends the summary without blocking the loop. Failures are logged.
func (e *Engine) submit(sum model.Summary) {
	parent := context.Background()
	if e.ctx != nil {
		parent = context.WithoutCancel(e.ctx)
	}
	e.work.Add(1)
	go func() {
		defer e.work.Done()
		ctx, cancel := context.WithTimeout(parent, SubmitTimeout)
		defer cancel()

		if e.history != nil {
			if _, err := e.history.Record(ctx, sum); err != nil {
				e.logger.Warn("failed to record history", "error", err)
			}
		}
		if e.submitter == nil {
			return
		}
		var err error
		if e.params.Corrective() {
			err = errors.Join(
				e.submitter.SaveCorrectiveLog(ctx, e.params.CorrectiveID, sum),
				e.submitter.AddCorrectiveTime(ctx, e.params.CorrectiveID, sum.Credit),
			)
		} else {
			err = e.submitter.SaveTraining(ctx, sum)
		}
		if err != nil {
			e.logger.Warn("failed to submit results", "corrective", e.params.Corrective(), "error", err)
		}
	}()
}

// State is a copy of the engine's observable state.
type State struct {
	Phase           Phase
	Operator        string
	Index           int
	QueueLen        int
	Current         *model.BaggageRecord
	Selected        int
	LastClickInside bool
	Score           int
	Hits            int
	FalseAlarms     int
	Efficiency      float64
	CategoryStats   map[int]model.CategoryStat
	WrongAnswers    []model.WrongAnswer
	Remaining       time.Duration
	Strikes         int
	MaxStrikes      int
	AFKPending      bool
	Filter          filter.Kind
	Summary         *model.Summary
}

// Snapshot returns the current state. It must run on the loop goroutine,
// or while the scheduler is idle.
func (e *Engine) Snapshot() State {
	stats := make(map[int]model.CategoryStat, len(e.stats))
	for k, v := range e.stats {
		stats[k] = v
	}
	s := State{
		Phase:           e.phase,
		Operator:        e.operator,
		Index:           e.index,
		QueueLen:        len(e.queue),
		Selected:        e.selected,
		LastClickInside: e.lastClickInside,
		Score:           e.score,
		Hits:            e.hits,
		FalseAlarms:     e.falseAlarms,
		Efficiency:      Efficiency(e.hits, e.falseAlarms),
		CategoryStats:   stats,
		WrongAnswers:    append([]model.WrongAnswer(nil), e.wrong...),
		Remaining:       e.remaining,
		Strikes:         e.afk.strikes,
		MaxStrikes:      e.cfg.MaxStrikes,
		AFKPending:      e.afkPending,
		Filter:          e.activeFilter,
	}
	if e.current != nil {
		rec := *e.current
		s.Current = &rec
	}
	if e.summary != nil {
		sum := *e.summary
		s.Summary = &sum
	}
	return s
}

// ViewState exposes a view's transform for tests and the UI.
func (e *Engine) ViewState(v model.View) (rect geometry.RectInt, scale float64, drawn bool) {
	vw := e.views[v]
	rect, drawn = vw.vp.LastDrawRect()
	return rect, vw.vp.Scale(), drawn
}

func (e *Engine) emitHUD() {
	e.emit(EventHUD, e.Snapshot())
}
