package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// ErrCancelled is returned when the user backs out of a selection.
var ErrCancelled = errors.New("selection cancelled")

// SelectorOption represents a single option in the selector
type SelectorOption struct {
	Label       string
	Description string
}

// Selector is an arrow-key menu used to pick a reminder for /edit and /delete.
// It falls back to a numbered prompt when stdin is not a terminal.
type Selector struct {
	question string
	options  []SelectorOption
	selected int
	colored  bool

	in  *os.File
	out io.Writer

	cursorStyle   lipgloss.Style
	selectedStyle lipgloss.Style
	optionStyle   lipgloss.Style
	dimStyle      lipgloss.Style
	questionStyle lipgloss.Style
	hintStyle     lipgloss.Style
}

func NewSelector(question string, options []SelectorOption, colored bool) *Selector {
	return &Selector{
		question: question,
		options:  options,
		colored:  colored,
		in:       os.Stdin,
		out:      os.Stdout,

		cursorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
		selectedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true),
		optionStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		dimStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		questionStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true),
		hintStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
	}
}

// Run displays the selector and returns the index of the chosen option.
func (s *Selector) Run() (int, error) {
	if len(s.options) == 0 {
		return -1, ErrCancelled
	}

	fd := int(s.in.Fd())
	if !term.IsTerminal(fd) {
		return s.runSimple(s.in)
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return s.runSimple(s.in)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
		fmt.Fprint(s.out, "\033[?25h") // Show cursor
	}()

	fmt.Fprint(s.out, "\033[?25l")

	totalLines := len(s.options) + 3
	s.printMenu()

	reader := bufio.NewReader(s.in)
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return -1, err
		}

		chosen := false
		switch b {
		case 13, 10, ' ': // Enter, Space
			chosen = true
		case 3, 'q': // Ctrl+C
			s.clearMenu(totalLines)
			return -1, ErrCancelled
		case 'j':
			s.moveDown()
		case 'k':
			s.moveUp()
		case 27: // Escape sequence
			b2, _ := reader.ReadByte()
			if b2 == '[' {
				b3, _ := reader.ReadByte()
				switch b3 {
				case 'A':
					s.moveUp()
				case 'B':
					s.moveDown()
				}
			}
		default:
			if b >= '1' && b <= '9' {
				idx := int(b - '1')
				if idx < len(s.options) {
					s.selected = idx
					chosen = true
				}
			}
		}

		s.clearMenu(totalLines)
		if chosen {
			return s.selected, nil
		}
		s.printMenu()
	}
}

func (s *Selector) printMenu() {
	var sb strings.Builder

	sb.WriteString(s.render(s.questionStyle, s.question))
	sb.WriteString("\r\n")
	sb.WriteString(s.render(s.hintStyle, "[j/k or arrows] move  [enter] select  [q] cancel"))
	sb.WriteString("\r\n\r\n")

	for i, opt := range s.options {
		label := optionLabel(opt)
		if i == s.selected {
			sb.WriteString(s.render(s.cursorStyle, "> "))
			sb.WriteString(s.render(s.selectedStyle, label))
		} else {
			sb.WriteString(s.render(s.dimStyle, "  "))
			sb.WriteString(s.render(s.optionStyle, label))
		}
		sb.WriteString("\r\n")
	}

	fmt.Fprint(s.out, sb.String())
}

func (s *Selector) render(style lipgloss.Style, text string) string {
	if s.colored {
		return style.Render(text)
	}
	return text
}

func (s *Selector) clearMenu(lines int) {
	for i := 0; i < lines; i++ {
		fmt.Fprint(s.out, "\033[A\033[2K\r")
	}
}

// runSimple reads a 1-based option number. An empty or invalid answer cancels
// rather than silently picking the first option.
func (s *Selector) runSimple(in io.Reader) (int, error) {
	fmt.Fprintln(s.out, s.question)
	for i, opt := range s.options {
		fmt.Fprintf(s.out, "  [%d] %s\n", i+1, optionLabel(opt))
	}
	fmt.Fprint(s.out, "Enter number: ")

	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && input == "" {
		return -1, ErrCancelled
	}

	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 || n > len(s.options) {
		return -1, ErrCancelled
	}
	return n - 1, nil
}

func (s *Selector) moveUp() {
	if s.selected > 0 {
		s.selected--
	} else {
		s.selected = len(s.options) - 1
	}
}

func (s *Selector) moveDown() {
	if s.selected < len(s.options)-1 {
		s.selected++
	} else {
		s.selected = 0
	}
}

func optionLabel(opt SelectorOption) string {
	if opt.Description != "" {
		return opt.Label + " - " + opt.Description
	}
	return opt.Label
}
