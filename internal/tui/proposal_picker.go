package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/mxdesk/internal/proposal"
)

// utcDateFormat matches a browser's Date.toUTCString().
const utcDateFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

// ProposalChosenMsg is sent when the user confirms a proposal. The picker
// stays open; the receiver decides when to hide it.
type ProposalChosenMsg struct {
	DisplayID string
}

// ProposalPickerCancelledMsg is sent when the user dismisses the picker.
type ProposalPickerCancelledMsg struct{}

// ProposalPicker is the "Select a proposal" dialog.
type ProposalPicker struct {
	visible       bool
	items         []proposal.Item
	cursor        int
	selectedID    string
	selectedLabel string
	now           func() time.Time
	keys          pickerKeyMap
}

// NewProposalPicker returns a hidden picker. now is read on every render
// of the empty state; nil uses time.Now.
func NewProposalPicker(now func() time.Time) *ProposalPicker {
	if now == nil {
		now = time.Now
	}
	return &ProposalPicker{now: now, keys: newPickerKeyMap()}
}

// Show opens the dialog over items, clearing any earlier selection.
func (p *ProposalPicker) Show(items []proposal.Item) {
	p.items = proposal.SortedByNumber(items)
	p.cursor = 0
	p.selectedID = ""
	p.selectedLabel = ""
	p.visible = true
}

func (p *ProposalPicker) Hide() { p.visible = false }

func (p *ProposalPicker) Visible() bool { return p.visible }

// Items returns the rows in display order.
func (p *ProposalPicker) Items() []proposal.Item { return p.items }

// Selected returns the picked row's proposal id and display id.
func (p *ProposalPicker) Selected() (id, label string, ok bool) {
	return p.selectedID, p.selectedLabel, p.selectedLabel != ""
}

// CanConfirm reports whether the confirm control is enabled.
func (p *ProposalPicker) CanConfirm() bool { return p.selectedLabel != "" }

// ClickRow selects the row at index i in display order.
func (p *ProposalPicker) ClickRow(i int) {
	if i < 0 || i >= len(p.items) {
		return
	}
	it := p.items[i]
	p.cursor = i
	p.selectedID = it.ProposalID
	p.selectedLabel = it.DisplayID()
}

func (p *ProposalPicker) Update(msg tea.Msg) tea.Cmd {
	if !p.visible {
		return nil
	}
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch {
	case key.Matches(km, p.keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(km, p.keys.Down):
		if p.cursor < len(p.items)-1 {
			p.cursor++
		}
	case key.Matches(km, p.keys.Pick):
		p.ClickRow(p.cursor)
	case key.Matches(km, p.keys.Confirm):
		if !p.CanConfirm() {
			return nil
		}
		id := p.selectedLabel
		return func() tea.Msg { return ProposalChosenMsg{DisplayID: id} }
	case key.Matches(km, p.keys.Cancel):
		return func() tea.Msg { return ProposalPickerCancelledMsg{} }
	}
	return nil
}

func (p *ProposalPicker) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Select a proposal"))
	b.WriteString("\n\n")

	if len(p.items) == 0 {
		b.WriteString(bannerStyle.Render(fmt.Sprintf(
			"You have no experiments scheduled for today (%s)",
			p.now().UTC().Format(utcDateFormat))))
	} else {
		b.WriteString(p.renderTable())
	}
	b.WriteString("\n\n")

	confirm := buttonDisabledStyle.Render("Select Proposal")
	if p.CanConfirm() {
		confirm = buttonStyle.Render("Select Proposal")
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, buttonOutlineStyle.Render("Cancel"), "  ", confirm))
	b.WriteString("\n")
	b.WriteString(renderHelp(p.keys.ShortHelp()))
	return b.String()
}

func (p *ProposalPicker) renderTable() string {
	numW, titleW, personW := len("Proposal Number"), len("Title"), len("Person")
	for _, it := range p.items {
		numW = max(numW, lipgloss.Width(it.DisplayID()))
		titleW = max(titleW, lipgloss.Width(it.Title))
		personW = max(personW, lipgloss.Width(it.Person))
	}
	titleW = min(titleW, 40)

	row := func(a, b, c string) string {
		return padCell(a, numW) + "  " + padCell(b, titleW) + "  " + padCell(c, personW)
	}

	lines := []string{tableHeaderStyle.Render(row("Proposal Number", "Title", "Person"))}
	for i, it := range p.items {
		line := row(it.DisplayID(), it.Title, it.Person)
		switch {
		case p.CanConfirm() && it.ProposalID == p.selectedID:
			line = selectedRowStyle.Render(line)
		case i == p.cursor:
			line = cursorRowStyle.Render(line)
		}
		marker := "  "
		if i == p.cursor {
			marker = keyStyle.Render("> ")
		}
		lines = append(lines, marker+line)
	}
	lines[0] = "  " + lines[0]
	return strings.Join(lines, "\n")
}

func padCell(s string, width int) string {
	if lipgloss.Width(s) > width {
		r := []rune(s)
		for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
			r = r[:len(r)-1]
		}
		s = string(r) + "…"
	}
	return s + strings.Repeat(" ", max(0, width-lipgloss.Width(s)))
}
