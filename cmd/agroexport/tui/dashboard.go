package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/marshallshelly/agroexport/pkg/httpapi"
	"github.com/marshallshelly/agroexport/pkg/store"
)

// DashboardLoader fetches the admin overview.
type DashboardLoader func(ctx context.Context) (httpapi.Dashboard, error)

type dashboardTab int

const (
	tabQuotes dashboardTab = iota
	tabMessages
)

// DashboardModel shows catalog counts and the newest quote requests and
// contact messages.
type DashboardModel struct {
	ctx      context.Context
	load     DashboardLoader
	spinner  spinner.Model
	quotes   table.Model
	messages table.Model
	tab      dashboardTab
	data     httpapi.Dashboard
	loading  bool
	err      error
	width    int
}

type dashboardLoadedMsg struct {
	data httpapi.Dashboard
	err  error
}

// NewDashboardModel creates the dashboard over load.
func NewDashboardModel(ctx context.Context, load DashboardLoader) DashboardModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	quotes := newTable([]table.Column{
		{Title: "Customer", Width: 22},
		{Title: "Email", Width: 28},
		{Title: "Qty", Width: 6},
		{Title: "Package", Width: 10},
		{Title: "Status", Width: 11},
		{Title: "Received", Width: 16},
	}, true)
	messages := newTable([]table.Column{
		{Title: "Name", Width: 22},
		{Title: "Email", Width: 28},
		{Title: "Subject", Width: 26},
		{Title: "Status", Width: 11},
		{Title: "Received", Width: 16},
	}, false)

	return DashboardModel{
		ctx:      ctx,
		load:     load,
		spinner:  sp,
		quotes:   quotes,
		messages: messages,
		loading:  true,
	}
}

func newTable(cols []table.Column, focused bool) table.Model {
	t := table.New(table.WithColumns(cols), table.WithHeight(7), table.WithFocused(focused))
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorBorder).
		BorderBottom(true).
		Bold(true).
		Foreground(colorPrimary)
	s.Selected = s.Selected.Foreground(colorText).Background(colorPrimary).Bold(false)
	t.SetStyles(s)
	return t
}

func (m DashboardModel) fetch() tea.Cmd {
	ctx, load := m.ctx, m.load
	return func() tea.Msg {
		d, err := load(ctx)
		return dashboardLoadedMsg{data: d, err: err}
	}
}

// Init starts the first load.
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch())
}

// Data returns the last loaded overview.
func (m DashboardModel) Data() httpapi.Dashboard { return m.data }

// Err returns the last load error.
func (m DashboardModel) Err() error { return m.err }

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case dashboardLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.data = msg.data
			m.quotes.SetRows(quoteRows(msg.data))
			m.messages.SetRows(messageRows(msg.data))
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			if m.loading {
				return m, nil
			}
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.fetch())
		case "tab":
			if m.tab == tabQuotes {
				m.tab = tabMessages
				m.quotes.Blur()
				m.messages.Focus()
			} else {
				m.tab = tabQuotes
				m.messages.Blur()
				m.quotes.Focus()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.tab == tabQuotes {
		m.quotes, cmd = m.quotes.Update(msg)
	} else {
		m.messages, cmd = m.messages.Update(msg)
	}
	return m, cmd
}

func quoteRows(d httpapi.Dashboard) []table.Row {
	rows := make([]table.Row, 0, len(d.RecentQuotes))
	for _, q := range d.RecentQuotes {
		rows = append(rows, table.Row{
			q.CustomerName,
			q.CustomerEmail,
			fmt.Sprint(q.Quantity),
			q.PackageSize,
			string(q.Status),
			q.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	return rows
}

func messageRows(d httpapi.Dashboard) []table.Row {
	rows := make([]table.Row, 0, len(d.RecentMessages))
	for _, c := range d.RecentMessages {
		rows = append(rows, table.Row{
			c.Name,
			c.Email,
			c.Subject,
			string(c.Status),
			c.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	return rows
}

// formatStats renders "total" first and the remaining statuses sorted.
func formatStats(s store.Stats) string {
	keys := make([]string, 0, len(s))
	for k := range s {
		if k != "total" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	parts := []string{statValueStyle.Render(fmt.Sprint(s["total"])) + " total"}
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", FormatStatus(k), statValueStyle.Render(fmt.Sprint(s[k]))))
	}
	return strings.Join(parts, "  ")
}

// View renders the UI
func (m DashboardModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("AgroExport Dashboard"))
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " " + subtitleStyle.Render("Loading..."))
		b.WriteString("\n")
	case m.err != nil:
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}

	counts := fmt.Sprintf("Products %s   Posts %s",
		statValueStyle.Render(fmt.Sprint(m.data.Products)),
		statValueStyle.Render(fmt.Sprint(m.data.Posts)))
	b.WriteString(boxStyle.Render(counts + "\n" +
		"Quotes    " + formatStats(m.data.Quotes) + "\n" +
		"Messages  " + formatStats(m.data.Messages)))
	b.WriteString("\n")

	quoteBox, messageBox := boxStyle, boxStyle
	if m.tab == tabQuotes {
		quoteBox = activeBoxStyle
	} else {
		messageBox = activeBoxStyle
	}
	b.WriteString(quoteBox.Render(infoStyle.Render("Recent quote requests") + "\n" + m.quotes.View()))
	b.WriteString("\n")
	b.WriteString(messageBox.Render(infoStyle.Render("Recent messages") + "\n" + m.messages.View()))
	b.WriteString("\n")

	b.WriteString(helpStyle.Render(
		FormatKey("tab", "switch") + " • " +
			FormatKey("↑/↓", "navigate") + " • " +
			FormatKey("r", "refresh") + " • " +
			FormatKey("q", "quit"),
	))
	return b.String()
}

// RunDashboardUI starts the dashboard.
func RunDashboardUI(ctx context.Context, load DashboardLoader) error {
	p := tea.NewProgram(NewDashboardModel(ctx, load), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
