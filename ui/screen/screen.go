// Package screen provides the training window: both X-ray views, the
// category panel, and the operator HUD.
package screen

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"xsim/internal/config"
	"xsim/internal/model"
	"xsim/internal/session"
	"xsim/ui/viewcanvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// Screen is the training window.
type Screen struct {
	fyne.Window
	engine *session.Engine
	logger *slog.Logger

	views [2]*viewcanvas.ViewCanvas

	categories *widget.RadioGroup
	labelToID  map[string]int
	confirm    *widget.Button

	operator *widget.Label
	clock    *widget.Label
	score    *widget.Label
	eff      *widget.Label
	strikes  *widget.Label
	filter   *widget.Label
	status   *widget.Label

	names    map[int]string
	finished bool

	onDone func(model.Summary)
}

// New creates the training window for e. The engine must not be started yet
// so that no early event is missed.
func New(a fyne.App, e *session.Engine, cfg *config.Config, title string, logger *slog.Logger) *Screen {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Screen{
		Window:    a.NewWindow(title),
		engine:    e,
		logger:    logger,
		labelToID: make(map[string]int),
		names:     make(map[int]string),
	}
	s.setupUI(cfg)
	s.setupEventHandlers()
	s.setupKeys()
	return s
}

// OnDone sets a callback run after the final summary is dismissed.
func (s *Screen) OnDone(fn func(model.Summary)) {
	s.onDone = fn
}

func (s *Screen) setupUI(cfg *config.Config) {
	minSize := fyne.NewSize(float32(cfg.Canvas.Width)/2, float32(cfg.Canvas.Height)/2)
	for _, v := range model.Views {
		s.views[v] = viewcanvas.New(s.engine.Surface(v), minSize, s.handlers(v))
	}

	s.categories = widget.NewRadioGroup(nil, func(label string) {
		if id, ok := s.labelToID[label]; ok {
			s.engine.SelectCategory(id)
		}
	})
	s.confirm = widget.NewButton("CONFIRM", s.engine.Confirm)
	s.confirm.Importance = widget.HighImportance

	s.operator = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	s.clock = widget.NewLabelWithStyle("--:--", fyne.TextAlignLeading, fyne.TextStyle{Monospace: true})
	s.score = widget.NewLabel("Score: 0")
	s.eff = widget.NewLabel("Efficiency: 0.0%")
	s.strikes = widget.NewLabel("")
	s.filter = widget.NewLabel("Filter: Normal")
	s.status = widget.NewLabel("Loading...")
	s.status.Wrapping = fyne.TextWrapWord

	hud := container.NewVBox(
		s.operator,
		s.clock,
		s.score,
		s.eff,
		s.strikes,
		s.filter,
		widget.NewSeparator(),
	)
	keys := widget.NewLabel("Q B&W  W NEG  A O2  S OS\nD HI  E SEN  R reset  Space pause")
	keys.TextStyle = fyne.TextStyle{Monospace: true}

	side := container.NewBorder(
		hud,
		container.NewVBox(s.confirm, keys, s.status),
		nil,
		nil,
		container.NewVScroll(s.categories),
	)

	viewPane := func(v model.View) fyne.CanvasObject {
		title := widget.NewLabelWithStyle(strings.ToUpper(v.String()), fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
		return container.NewBorder(title, nil, nil, nil, s.views[v])
	}
	views := container.NewGridWithColumns(2, viewPane(model.ViewTop), viewPane(model.ViewSide))

	split := container.NewHSplit(views, side)
	split.SetOffset(0.78)
	s.SetContent(split)

	s.SetOnClosed(s.engine.Abort)
}

func (s *Screen) handlers(v model.View) viewcanvas.Handlers {
	return viewcanvas.Handlers{
		OnClick:     func(x, y float64) { s.engine.Click(v, x, y) },
		OnZoom:      func(d float64) { s.engine.Zoom(v, d) },
		OnDragStart: func() { s.engine.BeginDrag(v) },
		OnDrag:      func(dx, dy float64) { s.engine.Drag(v, dx, dy) },
		OnDragEnd:   func() { s.engine.EndDrag(v) },
		OnActivity:  s.engine.Activity,
	}
}

func (s *Screen) setupKeys() {
	s.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		s.engine.Key(string(ev.Name))
	})
}

// setupEventHandlers mirrors engine events into widgets. Handlers run on
// the engine loop goroutine.
func (s *Screen) setupEventHandlers() {
	e := s.engine

	e.On(session.EventFrame, func(data any) {
		if f, ok := data.(session.Frame); ok {
			s.views[f.View].Redraw()
		}
	})

	e.On(session.EventCategories, func(data any) {
		cats, _ := data.([]session.Category)
		options := make([]string, 0, len(cats))
		s.labelToID = make(map[string]int, len(cats))
		for _, c := range cats {
			options = append(options, c.Label)
			s.labelToID[c.Label] = c.ID
			s.names[c.ID] = c.Label
		}
		s.categories.Options = options
		s.categories.Refresh()
		if len(options) == 0 {
			s.status.SetText("No categories available")
		}
	})

	e.On(session.EventOperator, func(data any) {
		if name, _ := data.(string); name != "" {
			s.operator.SetText(name)
		}
	})

	e.On(session.EventPresented, func(data any) {
		s.categories.SetSelected("")
		s.status.SetText("")
	})

	e.On(session.EventGraded, func(data any) {
		g, ok := data.(session.Graded)
		if !ok {
			return
		}
		switch {
		case g.Missed:
			s.status.SetText("Missed: bag left the belt")
		case g.Correct:
			s.status.SetText("Correct")
		default:
			s.status.SetText("Incorrect: " + g.Expected)
		}
	})

	e.On(session.EventHUD, func(data any) {
		if st, ok := data.(session.State); ok {
			s.updateHUD(st)
		}
	})

	e.On(session.EventNotice, func(data any) {
		if n, ok := data.(session.Notice); ok {
			s.status.SetText(n.Message)
		}
	})

	e.On(session.EventError, func(data any) {
		if ev, ok := data.(session.ErrorEvent); ok {
			s.logger.Warn("session error", "op", ev.Op, "error", ev.Err)
			s.status.SetText("Could not " + ev.Op + " bag; skipping")
		}
	})

	e.On(session.EventAFKWarning, func(data any) {
		w, ok := data.(session.AFKWarning)
		if !ok || w.Strike >= w.Max {
			return
		}
		msg := fmt.Sprintf("No activity detected. Warning %d of %d.\nThe session ends after %d warnings.", w.Strike, w.Max, w.Max)
		d := dialog.NewInformation("Are you still there?", msg, s.Window)
		d.SetOnClosed(s.engine.AcknowledgeAFK)
		d.Show()
	})

	e.On(session.EventFinished, func(data any) {
		sum, ok := data.(model.Summary)
		if !ok || s.finished {
			return
		}
		s.finished = true
		s.confirm.Disable()
		s.categories.Disable()
		s.showSummary(sum)
	})
}

func (s *Screen) updateHUD(st session.State) {
	s.clock.SetText(FormatRemaining(st.Remaining))
	s.score.SetText(fmt.Sprintf("Score: %d   False alarms: %d", st.Score, st.FalseAlarms))
	s.eff.SetText(fmt.Sprintf("Efficiency: %.1f%%", st.Efficiency))
	s.filter.SetText("Filter: " + st.Filter.String())
	if st.Strikes > 0 {
		s.strikes.SetText(fmt.Sprintf("AFK: %d/%d", st.Strikes, st.MaxStrikes))
	} else {
		s.strikes.SetText("")
	}
	if st.Phase == session.PhasePaused && !st.AFKPending {
		s.status.SetText("Paused: click the threat, pick a category, confirm")
	}
}

func (s *Screen) showSummary(sum model.Summary) {
	content := widget.NewLabel(strings.Join(SummaryLines(sum, s.names), "\n"))
	content.TextStyle = fyne.TextStyle{Monospace: true}
	d := dialog.NewCustom("Session Complete", "Close", container.NewVScroll(content), s.Window)
	d.Resize(fyne.NewSize(420, 480))
	d.SetOnClosed(func() {
		if s.onDone != nil {
			s.onDone(sum)
		}
		s.Close()
	})
	d.Show()
}

// FormatRemaining renders a countdown as mm:ss.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// SummaryLines renders a summary for the end-of-session dialog.
func SummaryLines(sum model.Summary, names map[int]string) []string {
	lines := []string{
		fmt.Sprintf("Score         %d", sum.Score),
		fmt.Sprintf("Hits          %d", sum.Hits),
		fmt.Sprintf("False alarms  %d", sum.FalseAlarms),
		fmt.Sprintf("Efficiency    %.1f%%", sum.Efficiency),
		fmt.Sprintf("Time used     %s", FormatRemaining(sum.TimeUsed)),
	}
	if sum.Corrective {
		lines = append(lines, fmt.Sprintf("Time earned   %d min", sum.Credit))
	}
	if sum.Graded() > 0 {
		lines = append(lines, fmt.Sprintf("Reaction      %.2fs ± %.2fs", sum.ReactionMean, sum.ReactionStdDev))
	}

	if len(sum.CategoryStats) > 0 {
		lines = append(lines, "", "By category")
		ids := make([]int, 0, len(sum.CategoryStats))
		for id := range sum.CategoryStats {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			st := sum.CategoryStats[id]
			name := names[id]
			if name == "" {
				name = fmt.Sprintf("#%d", id)
			}
			lines = append(lines, fmt.Sprintf("  %-16s %d/%d", name, st.Hits, st.Total))
		}
	}

	if len(sum.WrongAnswers) > 0 {
		lines = append(lines, "", "Wrong answers")
		for _, w := range sum.WrongAnswers {
			lines = append(lines, fmt.Sprintf("  %-12s %s -> %s", w.Code, w.Correct, w.User))
		}
	}
	return lines
}
