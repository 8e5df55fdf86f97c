package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nissyi-gh/flowboard/internal/model"
)

const (
	partYear = iota
	partMonth
	partDay
	datePartCount
)

var dateParts = [datePartCount]struct {
	placeholder string
	width       int
}{
	{"YYYY", 4},
	{"MM", 2},
	{"DD", 2},
}

// dateInput edits a deadline as separate year, month and day parts.
// The form walks the parts with Next and Prev before moving on to its own
// fields; left and right do the same inside the input.
type dateInput struct {
	parts [datePartCount]textinput.Model
	focus int
	now   func() time.Time
}

func newDateInput() dateInput {
	d := dateInput{now: time.Now}
	for i, p := range dateParts {
		ti := textinput.New()
		ti.Placeholder = p.placeholder
		ti.CharLimit = p.width
		ti.Width = p.width + 2
		ti.Prompt = ""
		ti.Validate = digitsOnly
		d.parts[i] = ti
	}
	return d
}

func digitsOnly(s string) error {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return errors.New("digits only")
		}
	}
	return nil
}

// Focus enters the input on the year, or on the day when coming back from
// the field after it.
func (d *dateInput) Focus(fromEnd bool) tea.Cmd {
	if fromEnd {
		return d.focusPart(partDay)
	}
	return d.focusPart(partYear)
}

func (d *dateInput) Blur() {
	for i := range d.parts {
		d.parts[i].Blur()
	}
}

// Next focuses the following part. It reports false, leaving focus where it
// is, once the day is reached.
func (d *dateInput) Next() (tea.Cmd, bool) {
	if d.focus == partDay {
		return nil, false
	}
	return d.focusPart(d.focus + 1), true
}

// Prev is Next in reverse, stopping at the year.
func (d *dateInput) Prev() (tea.Cmd, bool) {
	if d.focus == partYear {
		return nil, false
	}
	return d.focusPart(d.focus - 1), true
}

func (d *dateInput) focusPart(idx int) tea.Cmd {
	d.focus = idx
	d.Blur()
	return d.parts[idx].Focus()
}

// SetValue spreads a YYYY-MM-DD draft over the parts. "" clears them.
func (d *dateInput) SetValue(date string) {
	var split []string
	if date != "" {
		split = strings.SplitN(date, "-", datePartCount)
	}
	for i := range d.parts {
		v := ""
		if i < len(split) {
			v = split[i]
		}
		d.parts[i].SetValue(v)
	}
}

func (d dateInput) IsEmpty() bool {
	return d.Raw() == ""
}

// Raw joins the parts exactly as typed, or returns "" when nothing is typed.
func (d dateInput) Raw() string {
	y, m, day := d.parts[partYear].Value(), d.parts[partMonth].Value(), d.parts[partDay].Value()
	if y == "" && m == "" && day == "" {
		return ""
	}
	return y + "-" + m + "-" + day
}

// Value resolves the parts to a YYYY-MM-DD date. A blank year or month means
// the current one; the day is required.
func (d dateInput) Value() (string, error) {
	today := d.now()

	year, err := partNumber(d.parts[partYear].Value(), today.Year())
	if err != nil {
		return "", err
	}
	month, err := partNumber(d.parts[partMonth].Value(), int(today.Month()))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(d.parts[partDay].Value()) == "" {
		return "", errors.New("day is required")
	}
	day, err := partNumber(d.parts[partDay].Value(), 0)
	if err != nil {
		return "", err
	}

	value := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	if _, err := model.ParseDate(value); err != nil {
		return "", err
	}
	return value, nil
}

func partNumber(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid date part %q", raw)
	}
	return n, nil
}

func (d dateInput) Update(msg tea.Msg) (dateInput, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "right":
			cmd, _ := d.Next()
			return d, cmd
		case "left":
			cmd, _ := d.Prev()
			return d, cmd
		}
	}

	var cmd tea.Cmd
	d.parts[d.focus], cmd = d.parts[d.focus].Update(msg)
	return d, cmd
}

func (d dateInput) View() string {
	views := make([]string, len(d.parts))
	for i := range d.parts {
		views[i] = d.parts[i].View()
	}
	return strings.Join(views, " - ")
}
