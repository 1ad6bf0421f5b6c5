package tui

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/marshallshelly/agroexport/pkg/migration"
)

// Migrator is the part of migration.Executor the migration screen drives.
type Migrator interface {
	Initialize(ctx context.Context) error
	GetStatus(ctx context.Context, migrations []migration.Migration) ([]migration.MigrationRecord, error)
	Lock(ctx context.Context) error
	Unlock(ctx context.Context) error
	Apply(ctx context.Context, m migration.Migration, dryRun bool) error
	Rollback(ctx context.Context, m migration.Migration, dryRun bool) error
}

var _ Migrator = (*migration.Executor)(nil)

// Screen is the step the migration UI is on.
type Screen int

const (
	ScreenPick Screen = iota
	ScreenConfirm
	ScreenRunning
	ScreenDone
	ScreenFailed
)

// MigrateModel lets an operator pick migrations and run them in one
// direction under the advisory lock.
type MigrateModel struct {
	ctx      context.Context
	migrator Migrator
	files    []migration.Migration
	down     bool

	screen  Screen
	picker  list.Model
	dialog  ConfirmationDialog
	bar     ProgressView
	history LogView
	records []migration.MigrationRecord
	queue   []int
	locked  bool
	failure error

	width, height int
}

// NewMigrateModel builds the screen. action is "up" or "down".
func NewMigrateModel(ctx context.Context, action string, migrator Migrator, files []migration.Migration) MigrateModel {
	picker := list.New(nil, MigrationItemDelegate{}, 0, 0)
	picker.Title = "AgroExport Migrations"
	picker.Styles.Title = titleStyle
	picker.SetShowStatusBar(false)

	return MigrateModel{
		ctx:      ctx,
		migrator: migrator,
		files:    files,
		down:     action == "down",
		picker:   picker,
		history:  NewLogView(10),
	}
}

// Screen reports the current step.
func (m MigrateModel) Screen() Screen { return m.screen }

// Err is the failure shown on ScreenFailed.
func (m MigrateModel) Err() error { return m.failure }

type recordsMsg []migration.MigrationRecord

type failedMsg struct{ err error }

type stepDoneMsg struct {
	version string
	err     error
}

// Init reads the tracking table.
func (m MigrateModel) Init() tea.Cmd {
	return func() tea.Msg {
		if err := m.migrator.Initialize(m.ctx); err != nil {
			return failedMsg{fmt.Errorf("initialize tracking table: %w", err)}
		}
		records, err := m.migrator.GetStatus(m.ctx, m.files)
		if err != nil {
			return failedMsg{fmt.Errorf("read migration status: %w", err)}
		}
		return recordsMsg(records)
	}
}

func (m MigrateModel) verb() string {
	if m.down {
		return "down"
	}
	return "up"
}

// runs reports whether records[i] moves in this direction.
func (m MigrateModel) runs(i int) bool {
	if i < 0 || i >= len(m.records) {
		return false
	}
	return (m.records[i].Status == migration.StatusApplied) == m.down
}

func (m MigrateModel) runStep(mig migration.Migration) tea.Cmd {
	return func() tea.Msg {
		run := m.migrator.Apply
		if m.down {
			run = m.migrator.Rollback
		}
		return stepDoneMsg{version: mig.Version, err: run(m.ctx, mig, false)}
	}
}

func (m MigrateModel) ask(question string) MigrateModel {
	m.dialog = NewConfirmationDialog("Migrate "+m.verb(), question)
	m.screen = ScreenConfirm
	return m
}

// planOne queues the highlighted migration.
func (m MigrateModel) planOne() MigrateModel {
	i := m.picker.Index()
	if !m.runs(i) {
		return m
	}
	m.queue = []int{i}
	r := m.records[i]
	return m.ask(fmt.Sprintf("Run %s for %s (%s)?", m.verb(), r.Version, r.Name))
}

// planAll queues every eligible migration, newest first when rolling back.
func (m MigrateModel) planAll() MigrateModel {
	m.queue = nil
	for i := range m.records {
		if m.runs(i) {
			m.queue = append(m.queue, i)
		}
	}
	if m.down {
		slices.Reverse(m.queue)
	}
	if len(m.queue) == 0 {
		return m
	}
	return m.ask(fmt.Sprintf("Run %s for %d migration(s)?", m.verb(), len(m.queue)))
}

func (m MigrateModel) next() (MigrateModel, tea.Cmd) {
	mig := m.files[m.queue[m.bar.Current]]
	m.bar.Message = "Running " + mig.Version + " " + mig.Name
	return m, m.runStep(mig)
}

func (m MigrateModel) begin() (MigrateModel, tea.Cmd) {
	if err := m.migrator.Lock(m.ctx); err != nil {
		return m.fail(fmt.Errorf("failed to acquire lock: %w", err)), nil
	}
	m.locked = true
	m.screen = ScreenRunning
	m.bar = ProgressView{Total: len(m.queue)}
	return m.next()
}

func (m MigrateModel) fail(err error) MigrateModel {
	m.screen = ScreenFailed
	m.failure = err
	return m
}

func (m MigrateModel) exit() (MigrateModel, tea.Cmd) {
	if m.locked {
		_ = m.migrator.Unlock(context.WithoutCancel(m.ctx))
		m.locked = false
	}
	return m, tea.Quit
}

func (m MigrateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.picker.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case recordsMsg:
		m.records = msg
		return m, m.picker.SetItems(migrationItems(msg))

	case failedMsg:
		return m.fail(msg.err), nil

	case confirmedMsg:
		if msg.yes {
			return m.begin()
		}
		m.screen = ScreenPick
		return m, nil

	case stepDoneMsg:
		if msg.err != nil {
			m.history.AddLog(dangerStyle.Render("Failed: " + msg.version))
			return m.fail(msg.err), nil
		}
		m.history.AddLog(successStyle.Render("✓ " + msg.version))
		m.bar.Current++
		if m.bar.Current == m.bar.Total {
			m.screen = ScreenDone
			return m, nil
		}
		return m.next()

	case tea.KeyMsg:
		return m.onKey(msg)
	}

	if m.screen == ScreenPick {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m MigrateModel) onKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.screen {
	case ScreenPick:
		if m.picker.FilterState() == list.Filtering {
			break
		}
		switch k.String() {
		case "ctrl+c", "q":
			return m.exit()
		case "enter", " ":
			return m.planOne(), nil
		case "a":
			return m.planAll(), nil
		}

	case ScreenConfirm:
		if k.String() == "esc" || k.String() == "ctrl+c" {
			m.screen = ScreenPick
			return m, nil
		}
		return m, m.dialog.Update(k)

	case ScreenRunning:
		return m, nil

	case ScreenDone, ScreenFailed:
		switch k.String() {
		case "ctrl+c", "q", "enter":
			return m.exit()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(k)
	return m, cmd
}

func migrationItems(records []migration.MigrationRecord) []list.Item {
	items := make([]list.Item, 0, len(records))
	for _, r := range records {
		var at string
		if r.AppliedAt != nil {
			at = r.AppliedAt.Format("2006-01-02 15:04:05")
		}
		items = append(items, MigrationItem{Version: r.Version, Name: r.Name, Status: string(r.Status), AppliedAt: at})
	}
	return items
}

func (m MigrateModel) View() string {
	if m.screen == ScreenPick {
		keys := FormatKey("↑/↓", "move") + "  " + FormatKey("enter", "run one") + "  " +
			FormatKey("a", "run all") + "  " + FormatKey("q", "quit")
		return lipgloss.JoinVertical(lipgloss.Left, m.picker.View(), helpStyle.Render(keys))
	}

	var body string
	switch m.screen {
	case ScreenConfirm:
		body = m.dialog.View()
	case ScreenRunning:
		body = m.bar.View() + "\n\n" + m.history.View()
	case ScreenDone:
		body = m.summary("Migration Complete!", successStyle.Render(fmt.Sprintf("%d migration(s) ran %s", m.bar.Total, m.verb())))
	case ScreenFailed:
		body = m.summary("Migration Failed", errorStyle.Render(m.failure.Error()))
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

func (m MigrateModel) summary(title, line string) string {
	return boxStyle.Render(titleStyle.Render(title) + "\n\n" + line + "\n\n" + helpStyle.Render(FormatKey("enter/q", "exit")))
}

// RunMigrateUI runs the screen until the operator exits and returns the
// migration failure, if any.
func RunMigrateUI(ctx context.Context, action string, migrator Migrator, files []migration.Migration) error {
	final, err := tea.NewProgram(NewMigrateModel(ctx, action, migrator, files), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if mm, ok := final.(MigrateModel); ok {
		return mm.failure
	}
	return nil
}
