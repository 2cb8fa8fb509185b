package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/mxdesk/internal/sample"
	"github.com/jask/mxdesk/internal/service"
)

// SampleDispatcher receives the actions produced by the new sample dialog.
type SampleDispatcher interface {
	AddSamplesToList(ctx context.Context, recs []sample.Record) ([]sample.Record, error)
	AddSampleAndMount(ctx context.Context, rec sample.Record) error
	AddSamplesToQueue(ctx context.Context, recs []sample.Record) error
}

// similarNamer is optionally implemented by dispatchers that can warn
// about near-duplicate sample names.
type similarNamer interface {
	SimilarNames(ctx context.Context, name string, maxDist int) ([]string, error)
}

// SubmitAction selects where a new sample goes after registration.
type SubmitAction int

const (
	ActionMount SubmitAction = iota
	ActionQueue
)

func (a SubmitAction) String() string {
	if a == ActionQueue {
		return "queue"
	}
	return "mount"
}

// SampleSubmittedMsg reports the outcome of a dispatched submit. Record is
// the stored record when registration succeeded. HintErr is a failed
// similar-name lookup; it never fails the submit.
type SampleSubmittedMsg struct {
	Action  SubmitAction
	Record  sample.Record
	Hints   []string
	HintErr error
	Err     error
}

// focusFieldMsg moves focus once the dialog has been drawn.
type focusFieldMsg struct {
	field int
	gen   int
}

const (
	fieldSampleName = iota
	fieldProteinAcronym
	fieldCount
)

// SampleForm is the "New Sample" dialog.
type SampleForm struct {
	ctx        context.Context
	dispatcher SampleDispatcher
	rules      sample.Rules
	keys       formKeyMap

	visible     bool
	gen         int
	inputs      [fieldCount]textinput.Model
	focus       int
	submitted   bool
	submitting  bool
	errs        sample.Errors
	dispatchErr string
}

// NewSampleForm returns a hidden form validating with rules.
func NewSampleForm(ctx context.Context, rules sample.Rules, d SampleDispatcher) *SampleForm {
	f := &SampleForm{
		ctx:        ctx,
		dispatcher: d,
		rules:      rules,
		keys:       newFormKeyMap(),
	}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Width = 32
		f.inputs[i] = ti
	}
	return f
}

// Show opens an empty form. The returned command focuses the first field
// after the dialog has rendered.
func (f *SampleForm) Show() tea.Cmd {
	f.gen++
	for i := range f.inputs {
		f.inputs[i].SetValue("")
		f.inputs[i].Blur()
	}
	f.focus = fieldSampleName
	f.submitted = false
	f.submitting = false
	f.errs = sample.Errors{}
	f.dispatchErr = ""
	f.visible = true

	msg := focusFieldMsg{field: fieldSampleName, gen: f.gen}
	return func() tea.Msg { return msg }
}

func (f *SampleForm) Hide() {
	f.visible = false
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

func (f *SampleForm) Visible() bool { return f.visible }

// SetRules replaces the validation rules. Errors already shown are
// recomputed against the new rules.
func (f *SampleForm) SetRules(rules sample.Rules) {
	f.rules = rules
	f.revalidate()
}

// Params returns the current raw field values.
func (f *SampleForm) Params() sample.Params {
	return sample.Params{
		SampleName:     f.inputs[fieldSampleName].Value(),
		ProteinAcronym: f.inputs[fieldProteinAcronym].Value(),
	}
}

// Errors returns the inline errors currently shown.
func (f *SampleForm) Errors() sample.Errors { return f.errs }

// Focused returns the index of the focused field, or -1.
func (f *SampleForm) Focused() int {
	for i := range f.inputs {
		if f.inputs[i].Focused() {
			return i
		}
	}
	return -1
}

// SetValues fills both fields, as if typed.
func (f *SampleForm) SetValues(p sample.Params) {
	f.inputs[fieldSampleName].SetValue(p.SampleName)
	f.inputs[fieldProteinAcronym].SetValue(p.ProteinAcronym)
	f.revalidate()
}

// Submit validates the form and, when valid, returns a command that runs the
// dispatch chain for action. It returns nil when validation fails or a
// submit is already running.
func (f *SampleForm) Submit(action SubmitAction) tea.Cmd {
	if !f.visible || f.submitting {
		return nil
	}
	f.submitted = true
	f.dispatchErr = ""
	rec, errs, ok := f.rules.Build(f.Params())
	f.errs = errs
	if !ok {
		f.focusFirstInvalid()
		return nil
	}
	f.submitting = true
	return dispatchSample(f.ctx, f.dispatcher, action, rec)
}

// dispatchSample registers rec, then mounts or enqueues it, all inside one
// command so the store sees the calls in order.
func dispatchSample(ctx context.Context, d SampleDispatcher, action SubmitAction, rec sample.Record) tea.Cmd {
	return func() tea.Msg {
		var (
			hints   []string
			hintErr error
		)
		if s, ok := d.(similarNamer); ok {
			hints, hintErr = s.SimilarNames(ctx, rec.SampleName, 1)
		}
		added, err := d.AddSamplesToList(ctx, []sample.Record{rec})
		if err != nil {
			return SampleSubmittedMsg{Action: action, Record: rec, HintErr: hintErr, Err: err}
		}
		if len(added) > 0 {
			rec = added[0]
		}
		switch action {
		case ActionQueue:
			err = d.AddSamplesToQueue(ctx, []sample.Record{rec})
		default:
			err = d.AddSampleAndMount(ctx, rec)
		}
		return SampleSubmittedMsg{Action: action, Record: rec, Hints: hints, HintErr: hintErr, Err: err}
	}
}

func (f *SampleForm) Update(msg tea.Msg) tea.Cmd {
	if !f.visible {
		return nil
	}
	switch m := msg.(type) {
	case focusFieldMsg:
		if m.gen != f.gen {
			return nil
		}
		return f.setFocus(m.field)
	case SampleSubmittedMsg:
		f.submitting = false
		if m.Err != nil {
			f.dispatchErr = service.UserMessage(m.Err)
			return nil
		}
		f.Hide()
		return nil
	case tea.KeyMsg:
		switch {
		case key.Matches(m, f.keys.Hide):
			f.Hide()
			return nil
		case key.Matches(m, f.keys.Queue):
			return f.Submit(ActionQueue)
		case key.Matches(m, f.keys.Mount):
			return f.Submit(ActionMount)
		case key.Matches(m, f.keys.Next):
			return f.setFocus((f.focus + 1) % fieldCount)
		case key.Matches(m, f.keys.Prev):
			return f.setFocus((f.focus + fieldCount - 1) % fieldCount)
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	if _, ok := msg.(tea.KeyMsg); ok {
		f.revalidate()
	}
	return cmd
}

// revalidate refreshes inline errors once a submit has been attempted.
func (f *SampleForm) revalidate() {
	if f.submitted {
		f.errs = f.rules.Validate(f.Params())
	}
}

func (f *SampleForm) setFocus(i int) tea.Cmd {
	f.focus = i
	var cmd tea.Cmd
	for j := range f.inputs {
		if j == i {
			cmd = f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
	return cmd
}

func (f *SampleForm) focusFirstInvalid() {
	switch {
	case f.errs.SampleName != nil:
		f.setFocus(fieldSampleName)
	case f.errs.ProteinAcronym != nil:
		f.setFocus(fieldProteinAcronym)
	}
}

func (f *SampleForm) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New Sample"))
	b.WriteString("\n\n")

	rows := []struct {
		rule sample.FieldRule
		err  *sample.FieldError
	}{
		{f.rules.SampleName, f.errs.SampleName},
		{f.rules.ProteinAcronym, f.errs.ProteinAcronym},
	}
	labelW := 0
	for _, r := range rows {
		labelW = max(labelW, lipgloss.Width(r.rule.Label))
	}
	for i, r := range rows {
		label := labelStyle.Render(padCell(r.rule.Label, labelW))
		b.WriteString(label + "  " + f.inputs[i].View())
		switch {
		case f.submitted && r.err != nil:
			b.WriteString("\n" + strings.Repeat(" ", labelW+2) + errorStyle.Render(r.err.Message))
		case f.submitted:
			b.WriteString(" " + successStyle.Render("✓"))
		}
		b.WriteString("\n")
	}

	if f.dispatchErr != "" {
		b.WriteString("\n" + errorStyle.Render(f.dispatchErr) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, buttonStyle.Render("Mount"), "  ", buttonOutlineStyle.Render("Queue")))
	b.WriteString("\n")
	b.WriteString(renderHelp(f.keys.ShortHelp()))
	return b.String()
}
