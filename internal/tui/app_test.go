package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jask/mxdesk/internal/database/repository"
	"github.com/jask/mxdesk/internal/proposal"
	"github.com/jask/mxdesk/internal/sample"
	"github.com/jask/mxdesk/internal/service"
)

type fakeProposals struct {
	items    []proposal.Item
	selected *proposal.Item
}

func (f *fakeProposals) List(context.Context) ([]proposal.Item, error) { return f.items, nil }

func (f *fakeProposals) Select(_ context.Context, id string) (proposal.Item, error) {
	it, ok := proposal.Find(f.items, id)
	if !ok {
		return proposal.Item{}, &service.Error{Err: service.ErrNotAuthorized, UIMsg: "not yours"}
	}
	f.selected = &it
	return it, nil
}

func (f *fakeProposals) Selected(context.Context) (proposal.Item, bool, error) {
	if f.selected == nil {
		return proposal.Item{}, false, nil
	}
	return *f.selected, true, nil
}

type fakeSamples struct {
	fakeDispatcher
}

func (f *fakeSamples) QueueEntries(context.Context) ([]repository.QueueEntry, error) {
	var out []repository.QueueEntry
	for i, batch := range f.queued {
		for _, r := range batch {
			out = append(out, repository.QueueEntry{Position: int64(i + 1), Sample: r})
		}
	}
	return out, nil
}

func (f *fakeSamples) Mounted(context.Context) (*repository.Sample, error) {
	if len(f.mounted) == 0 {
		return nil, nil
	}
	return &repository.Sample{Record: f.mounted[len(f.mounted)-1]}, nil
}

func newTestApp(route string) (*App, *fakeProposals, *fakeSamples) {
	props := &fakeProposals{items: testProposals()}
	samples := &fakeSamples{}
	a := New(context.Background(), props, samples, Options{
		Route: route,
		Rules: sample.DefaultRules(),
		Now:   fixedNow,
	})
	return a, props, samples
}

// drain runs cmd and feeds its message back into the app, following
// returned commands until none are left. It stops after a focus message so
// cursor blink ticks are never run.
func drain(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil && i < 10; i++ {
		msg := cmd()
		if msg == nil {
			return
		}
		if _, ok := msg.(tea.BatchMsg); ok {
			return
		}
		_, cmd = a.Update(msg)
		if _, ok := msg.(focusFieldMsg); ok {
			return
		}
	}
}

func press(a *App, k tea.KeyMsg) tea.Cmd {
	_, cmd := a.Update(k)
	return cmd
}

func TestAppInitOpensPickerWhenNotLoggedIn(t *testing.T) {
	a, _, _ := newTestApp(RouteHome)
	drain(t, a, a.Init())
	if !a.Picker().Visible() {
		t.Fatal("picker should open when no proposal is selected")
	}
	if got := a.Picker().Items()[0].DisplayID(); got != "mx2522" {
		t.Fatalf("first row = %s", got)
	}
}

func TestAppInitSkipsPickerWhenLoggedIn(t *testing.T) {
	a, props, _ := newTestApp(RouteHome)
	props.selected = &props.items[0]
	drain(t, a, a.Init())
	if a.Picker().Visible() {
		t.Fatal("picker should stay closed for an existing session")
	}
	if !strings.Contains(a.View(), "mx2415") {
		t.Fatal("header should show the current proposal")
	}
}

func TestAppProposalSelectionClosesPicker(t *testing.T) {
	a, props, _ := newTestApp(RouteHome)
	drain(t, a, a.Init())

	press(a, tea.KeyMsg{Type: tea.KeyEnter})
	drain(t, a, press(a, runeKey("s")))

	if props.selected == nil || props.selected.DisplayID() != "mx2522" {
		t.Fatalf("selected = %+v, want mx2522", props.selected)
	}
	if a.Picker().Visible() {
		t.Fatal("shell should hide the picker after selection")
	}
}

func TestAppProposalSelectionFailureKeepsPicker(t *testing.T) {
	a, _, _ := newTestApp(RouteHome)
	drain(t, a, a.Init())

	drain(t, a, func() tea.Msg { return ProposalChosenMsg{DisplayID: "xx0000"} })
	if !a.Picker().Visible() {
		t.Fatal("picker should stay open on failure")
	}
	if !strings.Contains(a.Status(), "not yours") {
		t.Fatalf("status = %q", a.Status())
	}
}

func TestAppPickerCancelHides(t *testing.T) {
	a, _, _ := newTestApp(RouteHome)
	drain(t, a, a.Init())
	drain(t, a, press(a, tea.KeyMsg{Type: tea.KeyEsc}))
	if a.Picker().Visible() {
		t.Fatal("cancel should hide the picker")
	}
}

func submitSample(t *testing.T, a *App, p sample.Params, k tea.KeyMsg) {
	t.Helper()
	drain(t, a, press(a, runeKey("n")))
	if !a.Form().Visible() {
		t.Fatal("form should be open")
	}
	a.Form().SetValues(p)
	drain(t, a, press(a, k))
}

func TestAppMountSwitchesToCurrentTab(t *testing.T) {
	for _, route := range []string{RouteHome, RouteDataCollection} {
		t.Run(route, func(t *testing.T) {
			a, _, samples := newTestApp(route)
			if a.ListView() != ListTodo {
				t.Fatal("list view should start on todo")
			}
			submitSample(t, a, sample.Params{SampleName: "S1", ProteinAcronym: "LYS"}, tea.KeyMsg{Type: tea.KeyEnter})

			if got := strings.Join(samples.calls, ","); got != "list,mount" {
				t.Fatalf("calls = %s", got)
			}
			if a.Form().Visible() {
				t.Fatal("form should close")
			}
			if a.ListView() != ListCurrent {
				t.Fatalf("list view = %s, want current", a.ListView())
			}
			if !strings.Contains(a.View(), "LYS-S1") {
				t.Fatalf("mounted sample not shown:\n%s", a.View())
			}
		})
	}
}

func TestAppMountOnSampleGridKeepsTab(t *testing.T) {
	a, _, _ := newTestApp(RouteSampleGrid)
	submitSample(t, a, sample.Params{SampleName: "S1", ProteinAcronym: "LYS"}, tea.KeyMsg{Type: tea.KeyEnter})
	if a.ListView() != ListTodo {
		t.Fatalf("list view = %s, want todo", a.ListView())
	}
}

func TestAppQueueNeverSwitchesTab(t *testing.T) {
	a, _, samples := newTestApp(RouteDataCollection)
	submitSample(t, a, sample.Params{SampleName: "S2", ProteinAcronym: "THAU"}, tea.KeyMsg{Type: tea.KeyCtrlE})

	if got := strings.Join(samples.calls, ","); got != "list,queue" {
		t.Fatalf("calls = %s", got)
	}
	if a.Form().Visible() {
		t.Fatal("form should close")
	}
	if a.ListView() != ListTodo {
		t.Fatalf("list view = %s, want todo", a.ListView())
	}
	if !strings.Contains(a.View(), "THAU-S2") {
		t.Fatalf("queued sample not shown:\n%s", a.View())
	}
}

func TestAppMountFailureKeepsTab(t *testing.T) {
	a, _, samples := newTestApp(RouteHome)
	samples.mountErr = &service.Error{Err: service.ErrUnknownSample, UIMsg: "mount refused"}
	submitSample(t, a, sample.Params{SampleName: "S1", ProteinAcronym: "LYS"}, tea.KeyMsg{Type: tea.KeyEnter})

	if !a.Form().Visible() {
		t.Fatal("form should stay open on failure")
	}
	if a.ListView() != ListTodo {
		t.Fatal("tab must not switch on failure")
	}
	if !strings.Contains(a.Status(), "mount refused") {
		t.Fatalf("status = %q", a.Status())
	}
}

func TestAppSimilarNameHint(t *testing.T) {
	a, _, samples := newTestApp(RouteHome)
	samples.similar = []string{"S1"}
	submitSample(t, a, sample.Params{SampleName: "S1", ProteinAcronym: "LYS"}, tea.KeyMsg{Type: tea.KeyCtrlE})
	if !strings.Contains(a.Status(), "similar to S1") {
		t.Fatalf("status = %q", a.Status())
	}
}

func TestAppRouteKeys(t *testing.T) {
	a, _, _ := newTestApp(RouteHome)
	press(a, runeKey("g"))
	if a.Route() != RouteSampleGrid {
		t.Fatalf("route = %s", a.Route())
	}
	press(a, runeKey("d"))
	if a.Route() != RouteDataCollection {
		t.Fatalf("route = %s", a.Route())
	}
	press(a, tea.KeyMsg{Type: tea.KeyTab})
	if a.ListView() != ListCurrent {
		t.Fatal("tab should toggle the list view")
	}
}

func TestAppTypingQInFormDoesNotQuit(t *testing.T) {
	a, _, _ := newTestApp(RouteHome)
	drain(t, a, press(a, runeKey("n")))
	press(a, runeKey("q"))
	if !a.Form().Visible() {
		t.Fatal("q inside the form must be text, not quit")
	}
	if a.Form().Params().SampleName != "q" {
		t.Fatalf("sample name = %q", a.Form().Params().SampleName)
	}
}

func TestAppViewOverlaysModal(t *testing.T) {
	a, _, _ := newTestApp(RouteHome)
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	drain(t, a, press(a, runeKey("n")))
	view := a.View()
	if len(strings.Split(view, "\n")) != 30 {
		t.Fatalf("overlay should fill the window, got %d lines", len(strings.Split(view, "\n")))
	}
	if !strings.Contains(view, "New Sample") {
		t.Fatal("dialog missing from view")
	}
}

func TestAppRulesChangedAppliesToForm(t *testing.T) {
	a, _, _ := newTestApp(RouteHome)
	drain(t, a, press(a, runeKey("n")))
	a.Form().SetValues(sample.Params{SampleName: "ABCD", ProteinAcronym: "LYS"})

	rules := sample.DefaultRules()
	rules.SampleName = rules.SampleName.WithMaxLength(2)
	a.Update(RulesChangedMsg{Rules: rules})

	if cmd := a.Form().Submit(ActionMount); cmd != nil {
		t.Fatal("reloaded max length should block submit")
	}
	if e := a.Form().Errors().SampleName; e == nil || e.Kind != sample.ErrMaxLength {
		t.Fatalf("sample name error = %v", e)
	}
	if a.Status() != "sample rules reloaded" {
		t.Fatalf("status = %q", a.Status())
	}
}

func TestAppLogsHintLookupFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	samples := &fakeSamples{}
	samples.hintErr = errors.New("names query failed")
	a := New(context.Background(), &fakeProposals{items: testProposals()}, samples, Options{
		Rules: sample.DefaultRules(),
		Now:   fixedNow,
		Log:   zap.New(core),
	})
	submitSample(t, a, sample.Params{SampleName: "S1", ProteinAcronym: "LYS"}, tea.KeyMsg{Type: tea.KeyCtrlE})

	if a.Form().Visible() {
		t.Fatal("hint failure must not block the submit")
	}
	entries := logs.FilterMessage("similar name lookup failed").All()
	if len(entries) != 1 {
		t.Fatalf("warn entries = %d, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["sample"]; got != "S1" {
		t.Fatalf("sample field = %v", got)
	}
}
