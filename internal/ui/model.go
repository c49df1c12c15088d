// Package ui is the interactive front end: pick a tabular file, watch the
// conversion run, and see where the TSV landed.
package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/scbirlab/cbnr/internal/convert"
	"github.com/scbirlab/cbnr/table"
)

type state int

const (
	statePicker state = iota
	stateConverting
	stateDone
	stateError
)

type Model struct {
	state        state
	filepicker   filepicker.Model
	selectedFile string
	outputFile   string
	result       *convert.Result
	err          error
	width        int
	height       int
	progress     progress.Model
	progressChan chan float64
	resultChan   chan convertedMsg
}

type convertedMsg struct {
	result *convert.Result
	err    error
}

type progressMsg float64

// Run starts the interactive converter and blocks until it exits.
func Run() error {
	p := tea.NewProgram(InitialModel(), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

func InitialModel() Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".csv", ".tsv", ".txt", ".xlsx", ".gz", ".gzip"}
	fp.CurrentDirectory, _ = os.Getwd()

	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(lipgloss.Color("#36A3D9"))
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(lipgloss.Color("#5AD4A6"))
	fp.Styles.File = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(lipgloss.Color("#36A3D9")).Bold(true)

	return Model{
		state:      statePicker,
		filepicker: fp,
		progress:   progress.New(progress.WithGradient("#36A3D9", "#5AD4A6")),
	}
}

func (m Model) Init() tea.Cmd {
	return m.filepicker.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Leave room for the title, subtitle, and help line.
		height := msg.Height - 10
		if height < 5 {
			height = 5
		}
		m.filepicker.SetHeight(height)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case statePicker:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			}
		case stateDone, stateError:
			switch msg.String() {
			case "ctrl+c", "q", "enter", "esc":
				return m, tea.Quit
			}
		}

	case convertedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.result = msg.result
		m.state = stateDone
		return m, nil

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case progressMsg:
		if m.state == stateConverting {
			cmd := m.progress.SetPercent(float64(msg))
			return m, tea.Batch(cmd, waitForProgress(m.progressChan, m.resultChan))
		}
		return m, nil
	}

	if m.state == statePicker {
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			return m.convertFile(path)
		}
		return m, cmd
	}

	return m, nil
}

// outputPath derives the TSV destination from an input path: the gzip and
// format extensions are dropped and .tsv appended.
func outputPath(input string) string {
	base := table.TrimGzip(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".tsv"
}

func (m Model) convertFile(path string) (Model, tea.Cmd) {
	format, ok := table.Sniff(path)
	if !ok {
		format = table.TSV
	}
	m.outputFile = outputPath(path)
	m.state = stateConverting
	m.progressChan = make(chan float64, 16)
	m.resultChan = make(chan convertedMsg, 1)

	progressChan := m.progressChan
	resultChan := m.resultChan
	output := m.outputFile

	cmd := tea.Batch(
		func() tea.Msg {
			go func() {
				open := func() (io.WriteCloser, error) { return os.Create(output) }
				res, err := convert.Convert([]string{path}, format, nil, open, progressChan)
				resultChan <- convertedMsg{result: res, err: err}
				close(progressChan)
				close(resultChan)
			}()
			return nil
		},
		waitForProgress(progressChan, resultChan),
		m.progress.Init(),
	)
	return m, cmd
}

func waitForProgress(progressChan chan float64, resultChan chan convertedMsg) tea.Cmd {
	return func() tea.Msg {
		if progressChan == nil {
			return nil
		}
		p, ok := <-progressChan
		if !ok {
			res, ok := <-resultChan
			if ok {
				return res
			}
			return nil
		}
		return progressMsg(p)
	}
}

func (m Model) View() string {
	switch m.state {
	case statePicker:
		return m.viewPicker()
	case stateConverting:
		return m.viewConverting()
	case stateDone:
		return m.viewDone()
	case stateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewPicker() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("cbnr — tabular file converter"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Select a CSV, TSV, or XLSX file to convert to TSV"))
	s.WriteString("\n\n")
	s.WriteString(m.filepicker.View())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("Press q to quit"))

	return s.String()
}

func (m Model) viewConverting() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("Converting..."))
	s.WriteString("\n\n")
	s.WriteString(PathStyle.Render(filepath.Base(m.selectedFile)))
	s.WriteString("\n\n")
	s.WriteString(m.progress.View())

	return BoxStyle.Render(s.String())
}

func (m Model) viewDone() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("✓ Conversion complete"))
	s.WriteString("\n\n")

	s.WriteString(fmt.Sprintf("Input:  %s\n", truncatePath(m.selectedFile, m.width)))
	s.WriteString(SuccessStyle.Render(fmt.Sprintf("Output: %s\n", truncatePath(m.outputFile, m.width))))
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("Columns: %s\n", strings.Join(m.result.Columns, ", ")))
	s.WriteString(fmt.Sprintf("Rows written: %d\n", m.result.RowsWritten))
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("Press any key to exit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render("✗ Error"))
	s.WriteString("\n\n")
	s.WriteString(m.err.Error())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("Press any key to exit"))

	return BoxStyle.Render(s.String())
}

func truncatePath(path string, width int) string {
	maxLen := width - 20
	if maxLen < 30 {
		maxLen = 30
	}
	if len(path) > maxLen {
		return "..." + path[len(path)-maxLen+3:]
	}
	return path
}
