package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jask/mxdesk/internal/database/repository"
	"github.com/jask/mxdesk/internal/proposal"
	"github.com/jask/mxdesk/internal/sample"
	"github.com/jask/mxdesk/internal/service"
)

// Routes the shell can show.
const (
	RouteHome           = "/"
	RouteDataCollection = "/datacollection"
	RouteSampleGrid     = "/samplegrid"
)

// List view tabs.
const (
	ListCurrent = "current"
	ListTodo    = "todo"
)

// Proposals is the proposal store as seen by the shell.
type Proposals interface {
	List(ctx context.Context) ([]proposal.Item, error)
	Select(ctx context.Context, displayID string) (proposal.Item, error)
	Selected(ctx context.Context) (proposal.Item, bool, error)
}

// Samples is the sample store as seen by the shell.
type Samples interface {
	SampleDispatcher
	QueueEntries(ctx context.Context) ([]repository.QueueEntry, error)
	Mounted(ctx context.Context) (*repository.Sample, error)
}

// Options configures an App.
type Options struct {
	Route string
	Rules sample.Rules
	Now   func() time.Time
	Log   *zap.Logger
}

// App is the root model: a header, the sample list view and the two dialogs.
type App struct {
	ctx       context.Context
	log       *zap.Logger
	proposals Proposals
	samples   Samples
	keys      appKeyMap

	picker *ProposalPicker
	form   *SampleForm

	route    string
	listView string
	current  *proposal.Item
	queue    []repository.QueueEntry
	mounted  *repository.Sample
	status   string
	statusOK bool
	width    int
	height   int
}

func New(ctx context.Context, proposals Proposals, samples Samples, opts Options) *App {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	route := opts.Route
	if route == "" {
		route = RouteHome
	}
	return &App{
		ctx:       ctx,
		log:       opts.Log,
		proposals: proposals,
		samples:   samples,
		keys:      newAppKeyMap(),
		picker:    NewProposalPicker(opts.Now),
		form:      NewSampleForm(ctx, opts.Rules, samples),
		route:     route,
		listView:  ListTodo,
	}
}

// messages
type proposalsLoadedMsg []proposal.Item

type proposalSelectedMsg struct{ item proposal.Item }

type sessionLoadedMsg struct {
	current *proposal.Item
	queue   []repository.QueueEntry
	mounted *repository.Sample
	// login opens the picker when no proposal is selected yet
	login bool
}

type errMsg struct{ error }

// RulesChangedMsg delivers reloaded form rules, e.g. after a config edit.
// Err is set when some rules fell back to defaults.
type RulesChangedMsg struct {
	Rules sample.Rules
	Err   error
}

func (a *App) Init() tea.Cmd {
	return a.loadSession(true)
}

// Route returns the current navigation location.
func (a *App) Route() string { return a.route }

// ListView returns the active list tab.
func (a *App) ListView() string { return a.listView }

// ShowList switches the sample list view to tab.
func (a *App) ShowList(tab string) {
	if tab == ListCurrent || tab == ListTodo {
		a.listView = tab
	}
}

func (a *App) Picker() *ProposalPicker { return a.picker }

func (a *App) Form() *SampleForm { return a.form }

func (a *App) Status() string { return a.status }

func (a *App) loadSession(login bool) tea.Cmd {
	return func() tea.Msg {
		var out sessionLoadedMsg
		p, ok, err := a.proposals.Selected(a.ctx)
		if err != nil {
			return errMsg{fmt.Errorf("load selected proposal: %w", err)}
		}
		if ok {
			out.current = &p
		}
		out.login = login && !ok
		if out.queue, err = a.samples.QueueEntries(a.ctx); err != nil {
			return errMsg{fmt.Errorf("load queue: %w", err)}
		}
		if out.mounted, err = a.samples.Mounted(a.ctx); err != nil {
			return errMsg{fmt.Errorf("load mounted sample: %w", err)}
		}
		return out
	}
}

func (a *App) loadProposals() tea.Cmd {
	return func() tea.Msg {
		items, err := a.proposals.List(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return proposalsLoadedMsg(items)
	}
}

func (a *App) selectProposal(id string) tea.Cmd {
	return func() tea.Msg {
		p, err := a.proposals.Select(a.ctx, id)
		if err != nil {
			return errMsg{err}
		}
		return proposalSelectedMsg{item: p}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		return a, nil
	case tea.KeyMsg:
		if m.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.picker.Visible() {
			return a, a.picker.Update(m)
		}
		if a.form.Visible() {
			return a, a.form.Update(m)
		}
		return a.handleKey(m)
	case focusFieldMsg:
		return a, a.form.Update(m)
	case ProposalChosenMsg:
		a.setStatus("selecting "+m.DisplayID+"...", true)
		return a, a.selectProposal(m.DisplayID)
	case ProposalPickerCancelledMsg:
		a.picker.Hide()
		return a, nil
	case proposalSelectedMsg:
		item := m.item
		a.current = &item
		a.picker.Hide()
		a.setStatus("logged in to "+item.DisplayID(), true)
		return a, nil
	case proposalsLoadedMsg:
		a.picker.Show([]proposal.Item(m))
		return a, nil
	case SampleSubmittedMsg:
		return a, a.handleSubmitted(m)
	case RulesChangedMsg:
		a.form.SetRules(m.Rules)
		if m.Err != nil {
			a.log.Warn("reloaded sample rules with errors", zap.Error(m.Err))
			a.setStatus("config: "+m.Err.Error(), false)
		} else {
			a.setStatus("sample rules reloaded", true)
		}
		return a, nil
	case sessionLoadedMsg:
		if m.current != nil {
			a.current = m.current
		}
		a.queue = m.queue
		a.mounted = m.mounted
		if m.login {
			return a, a.loadProposals()
		}
		return a, nil
	case errMsg:
		a.log.Warn("store error", zap.Error(m.error))
		a.setStatus("error: "+service.UserMessage(m.error), false)
		return a, nil
	}
	// cursor blink and other input-internal ticks
	if a.form.Visible() {
		return a, a.form.Update(msg)
	}
	return a, nil
}

// handleSubmitted closes the dialog after a successful dispatch and, for a
// mount from the collection views, brings the mounted sample tab forward.
func (a *App) handleSubmitted(m SampleSubmittedMsg) tea.Cmd {
	if m.HintErr != nil {
		a.log.Warn("similar name lookup failed", zap.String("sample", m.Record.SampleName), zap.Error(m.HintErr))
	}
	if m.Err != nil {
		a.log.Warn("sample submit failed", zap.Stringer("action", m.Action), zap.Error(m.Err))
		a.form.Update(m)
		a.setStatus("error: "+service.UserMessage(m.Err), false)
		return nil
	}
	a.form.Update(m)
	a.form.Hide()
	if m.Action == ActionMount && showsCurrentTab(a.route) {
		a.ShowList(ListCurrent)
	}

	status := fmt.Sprintf("%s %s", pastTense(m.Action), m.Record.DefaultPrefix)
	if len(m.Hints) > 0 {
		status += " (similar to " + strings.Join(m.Hints, ", ") + ")"
	}
	a.setStatus(status, true)
	return a.loadSession(false)
}

func showsCurrentTab(route string) bool {
	return route == RouteHome || route == RouteDataCollection
}

func pastTense(a SubmitAction) string {
	if a == ActionQueue {
		return "queued"
	}
	return "mounted"
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(m, a.keys.Proposals):
		return a, a.loadProposals()
	case key.Matches(m, a.keys.NewSample):
		return a, a.form.Show()
	case key.Matches(m, a.keys.ToggleTab):
		if a.listView == ListCurrent {
			a.ShowList(ListTodo)
		} else {
			a.ShowList(ListCurrent)
		}
	case key.Matches(m, a.keys.Home):
		a.route = RouteHome
	case key.Matches(m, a.keys.Collect):
		a.route = RouteDataCollection
	case key.Matches(m, a.keys.Grid):
		a.route = RouteSampleGrid
	}
	return a, nil
}

func (a *App) setStatus(s string, ok bool) {
	a.status = s
	a.statusOK = ok
}

func (a *App) View() string {
	body := a.renderBase()
	switch {
	case a.picker.Visible():
		return renderModal(body, a.picker.View(), a.width, a.height)
	case a.form.Visible():
		return renderModal(body, a.form.View(), a.width, a.height)
	}
	return body
}

func (a *App) renderBase() string {
	var b strings.Builder

	login := mutedStyle.Render("no proposal")
	if a.current != nil {
		login = infoStyle.Render(a.current.DisplayID()) + " " + mutedStyle.Render(a.current.Title)
	}
	b.WriteString(headerStyle.Render(titleStyle.Render("mxdesk") + "  " + a.route + "  " + login))
	b.WriteString("\n\n")

	tabs := []string{ListCurrent, ListTodo}
	for i, t := range tabs {
		style := inactiveTabStyle
		if t == a.listView {
			style = activeTabStyle
		}
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(style.Render(t))
	}
	b.WriteString("\n\n")

	switch a.listView {
	case ListCurrent:
		if a.mounted == nil {
			b.WriteString(mutedStyle.Render("No sample mounted"))
		} else {
			b.WriteString(fmt.Sprintf("%s  %s", keyStyle.Render(a.mounted.DefaultPrefix), mutedStyle.Render(a.mounted.Location)))
		}
	default:
		if len(a.queue) == 0 {
			b.WriteString(mutedStyle.Render("Queue is empty"))
		}
		for i, e := range a.queue {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(fmt.Sprintf("%3d  %s", i+1, e.Sample.DefaultPrefix))
		}
	}
	b.WriteString("\n\n")

	if a.status != "" {
		style := statusStyle
		if !a.statusOK {
			style = statusErrStyle
		}
		b.WriteString(style.Render(a.status))
		b.WriteString("\n")
	}
	b.WriteString(renderHelp(a.keys.ShortHelp()))
	return b.String()
}
