package tui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/blackwell-systems/crxledger/internal/logger"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// reportInterval is how many bytes pass between progress updates.
const reportInterval = 256 * 1024

// ProgressReader wraps an io.Reader and reports the running byte count
// through a channel.
type ProgressReader struct {
	reader      io.Reader
	total       int64
	read        int64
	progressMsg chan<- int64
	lastReport  int64
}

// NewProgressReader creates a reader that reports progress. total may be
// -1 when the size is unknown.
func NewProgressReader(r io.Reader, total int64, progressMsg chan<- int64) *ProgressReader {
	return &ProgressReader{
		reader:      r,
		total:       total,
		progressMsg: progressMsg,
	}
}

func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.read += int64(n)

	if pr.progressMsg != nil && n > 0 {
		sinceLast := pr.read - pr.lastReport
		isComplete := err == io.EOF || (pr.total > 0 && pr.read >= pr.total)

		if sinceLast >= reportInterval || isComplete {
			select {
			case pr.progressMsg <- pr.read:
				pr.lastReport = pr.read
			default:
				// UI is behind, drop this update
			}
		}
	}
	return n, err
}

// BytesRead returns how many bytes have passed through.
func (pr *ProgressReader) BytesRead() int64 { return pr.read }

type progressMsg int64

type tickMsg time.Time

type progressModel struct {
	progress   progress.Model
	total      int64
	current    int64
	label      string
	done       bool
	progressCh <-chan int64
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		waitForProgress(m.progressCh),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForProgress(ch <-chan int64) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return progressMsg(-1)
		}
		return progressMsg(n)
	}
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.done {
			return m, tea.Quit
		}
		return m, tickCmd()

	case progressMsg:
		if int64(msg) == -1 {
			m.done = true
			return m, tea.Quit
		}
		m.current = int64(msg)
		if m.total > 0 && m.current >= m.total {
			m.done = true
			return m, tea.Quit
		}
		return m, waitForProgress(m.progressCh)

	case tea.WindowSizeMsg:
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		return m, nil
	}

	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}

	label := ansi.Truncate(m.label, m.progress.Width+20, "…")
	currentMB := float64(m.current) / 1024 / 1024
	if m.total <= 0 {
		return fmt.Sprintf("%s\n%.2f MB\n", label, currentMB)
	}

	percent := float64(m.current) / float64(m.total)
	totalMB := float64(m.total) / 1024 / 1024
	return fmt.Sprintf(
		"%s\n%s\n%.2f MB / %.2f MB (%.0f%%)\n",
		label,
		m.progress.ViewAs(percent),
		currentMB,
		totalMB,
		percent*100,
	)
}

// ShowProgress displays a progress bar until progressCh is closed or the
// reported count reaches total.
func ShowProgress(label string, total int64, progressCh <-chan int64) error {
	m := progressModel{
		progress:   progress.New(progress.WithDefaultGradient()),
		total:      total,
		label:      label,
		progressCh: progressCh,
	}
	_, err := tea.NewProgram(m).Run()
	return err
}

// DownloadProgress wraps a download body with a progress bar. The returned
// done func closes the display and waits for it to exit; it is safe to call
// more than once.
func DownloadProgress(label string, total int64, body io.Reader) (io.Reader, func()) {
	ch := make(chan int64, 1)
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		if err := ShowProgress(label, total, ch); err != nil {
			logger.L().Debugw("progress display failed", "error", err)
		}
	}()

	var once sync.Once
	done := func() {
		once.Do(func() {
			close(ch)
			<-exited
		})
	}
	return NewProgressReader(body, total, ch), done
}
