package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driving"
)

// recentLimit is the number of finished tickers kept on screen.
const recentLimit = 8

// barWidth is the width of the progress bar in cells.
const barWidth = 40

// BatchModel shows a running batch: a spinner, a progress bar and the
// most recently finished tickers.
type BatchModel struct {
	styles  *styles.Styles
	keys    *keymap.KeyMap
	spinner spinner.Model
	bar     *status.Bar
	cancel  context.CancelFunc

	total     int
	completed int
	failed    int
	empty     int
	recent    []domain.BatchProgress
	stopping  bool

	report *domain.BatchReport
	err    error
	done   bool
}

// Ensure BatchModel implements tea.Model.
var _ tea.Model = (*BatchModel)(nil)

// NewBatchModel creates a model for total tickers. cancel is called when
// the user interrupts the run.
func NewBatchModel(s *styles.Styles, total int, cancel context.CancelFunc) *BatchModel {
	if s == nil {
		s = styles.DefaultStyles()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Title

	km := keymap.DefaultKeyMap()
	bar := status.NewBar(s, km)
	bar.SetState(status.StateRunning)

	return &BatchModel{
		styles:  s,
		keys:    km,
		spinner: sp,
		bar:     bar,
		cancel:  cancel,
		total:   total,
	}
}

// Init starts the spinner.
func (m *BatchModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m *BatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Cancel) {
			if !m.stopping && m.cancel != nil {
				m.cancel()
			}
			m.stopping = true
			m.bar.SetMessage("stopping")
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.bar.SetWidth(msg.Width)
		return m, nil

	case messages.BatchProgressed:
		m.record(msg.Progress)
		return m, nil

	case messages.BatchFinished:
		m.report = msg.Report
		m.err = msg.Err
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *BatchModel) record(p domain.BatchProgress) {
	m.completed = p.Completed
	if p.Total > 0 {
		m.total = p.Total
	}
	switch {
	case p.Err != nil:
		m.failed++
	case p.Themes == 0:
		m.empty++
	}
	m.recent = append(m.recent, p)
	if len(m.recent) > recentLimit {
		m.recent = m.recent[len(m.recent)-recentLimit:]
	}
}

// View implements tea.Model.
func (m *BatchModel) View() string {
	if m.done {
		return ""
	}

	status := "Extracting themes"
	if m.stopping {
		status = "Stopping, waiting for in-flight tickers"
	}

	lines := []string{
		m.spinner.View() + " " + m.styles.Title.Render(status),
		"",
		m.renderBar() + " " + m.styles.Normal.Render(fmt.Sprintf("%d/%d", m.completed, m.total)),
		m.styles.Muted.Render(fmt.Sprintf("failed %d  empty %d", m.failed, m.empty)),
		"",
	}
	for _, p := range m.recent {
		lines = append(lines, m.renderProgress(p))
	}
	lines = append(lines, "", m.bar.View())
	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

func (m *BatchModel) renderBar() string {
	filled := 0
	if m.total > 0 {
		filled = min(m.completed*barWidth/m.total, barWidth)
	}
	return m.styles.Success.Render(strings.Repeat("█", filled)) +
		m.styles.Muted.Render(strings.Repeat("░", barWidth-filled))
}

func (m *BatchModel) renderProgress(p domain.BatchProgress) string {
	ticker := m.styles.Ticker.Render(fmt.Sprintf("%-6s", p.Ticker))
	switch {
	case p.Err != nil:
		return ticker + " " + m.styles.Error.Render(p.Err.Error())
	case p.Themes == 0:
		return ticker + " " + m.styles.Warning.Render("no themes")
	default:
		return ticker + " " + m.styles.Normal.Render(fmt.Sprintf("%d themes", p.Themes))
	}
}

// Report returns the final report once the batch has finished.
func (m *BatchModel) Report() (*domain.BatchReport, error) {
	return m.report, m.err
}

// Completed returns the number of finished tickers.
func (m *BatchModel) Completed() int {
	return m.completed
}

// Done reports whether the batch has returned.
func (m *BatchModel) Done() bool {
	return m.done
}

// RunBatch runs a batch behind a live progress view written to out.
// Interrupting the view cancels the batch; the report of the work done so
// far is still returned.
func RunBatch(
	ctx context.Context,
	batch driving.BatchService,
	tickers []string,
	opts domain.BatchOptions,
	out io.Writer,
) (*domain.BatchReport, error) {
	if batch == nil {
		return nil, ErrMissingBatchService
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewBatchModel(nil, len(tickers), cancel)
	p := tea.NewProgram(model, tea.WithOutput(out))

	type result struct {
		report *domain.BatchReport
		err    error
	}
	done := make(chan result, 1)

	go func() {
		report, err := batch.Run(runCtx, tickers, opts, func(bp domain.BatchProgress) {
			p.Send(messages.BatchProgressed{Progress: bp})
		})
		done <- result{report: report, err: err}
		p.Send(messages.BatchFinished{Report: report, Err: err})
	}()

	_, runErr := p.Run()
	if runErr != nil {
		cancel()
	}
	r := <-done

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) && !errors.Is(runErr, tea.ErrInterrupted) {
		return r.report, errors.Join(r.err, runErr)
	}
	return r.report, r.err
}
