package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"upfolio/internal/holdings"
	"upfolio/internal/poller"
	"upfolio/internal/session"
)

// Styles.
var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	colHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	companyStyle   = lipgloss.NewStyle().Bold(true)
	symbolStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	gainStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("1"))
	cardStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("245")).Padding(0, 1).Width(34)
)

// pnlStyle picks green for gains and red for losses; zero stays plain.
func pnlStyle(v float64) lipgloss.Style {
	switch {
	case v > 0:
		return gainStyle
	case v < 0:
		return lossStyle
	default:
		return lipgloss.NewStyle()
	}
}

var sortLabels = map[holdings.Field]string{
	holdings.FieldPnL:          "PnL",
	holdings.FieldDayChange:    "Day %",
	holdings.FieldQuantity:     "Qty",
	holdings.FieldAveragePrice: "Avg",
	holdings.FieldLastPrice:    "LTP",
}

// Messages.
type snapshotMsg struct {
	snap holdings.Snapshot
	err  error
}

// Model.
type model struct {
	store  *session.Store
	poll   *poller.Poller
	logger *slog.Logger

	snapshot   holdings.Snapshot
	gotFirst   bool
	lastUpdate time.Time
	lastErr    string

	query     string
	input     textinput.Model
	filtering bool
	sortSpec  holdings.SortSpec
	cardView  bool

	viewport      viewport.Model
	ready         bool
	width, height int
}

func initialModel(store *session.Store, poll *poller.Poller, logger *slog.Logger) model {
	ti := textinput.New()
	ti.Placeholder = "company or symbol"
	ti.Prompt = "filter: "
	ti.CharLimit = 64
	return model{
		store:    store,
		poll:     poll,
		logger:   logger,
		input:    ti,
		sortSpec: holdings.DefaultSort,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.filtering {
			switch msg.String() {
			case "enter":
				m.filtering = false
				m.input.Blur()
				return m, nil
			case "esc":
				m.filtering = false
				m.input.Blur()
				m.input.SetValue("")
				m.query = ""
				m.refresh()
				return m, nil
			default:
				m.input, cmd = m.input.Update(msg)
				m.query = m.input.Value()
				m.refresh()
				return m, cmd
			}
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "/":
			m.filtering = true
			return m, m.input.Focus()
		case "s":
			m.sortSpec.Field = nextSortField(m.sortSpec.Field)
			m.refresh()
			return m, nil
		case "d":
			m.sortSpec.Desc = !m.sortSpec.Desc
			m.refresh()
			return m, nil
		case "v":
			m.cardView = !m.cardView
			m.refresh()
			return m, nil
		case "r":
			m.poll.Poke()
			return m, nil
		case "l":
			if err := m.store.Clear(); err != nil {
				m.logger.Warn("clearing session", "error", err)
			}
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := m.height - 2 // header + footer
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.MouseWheelEnabled = true
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refresh()
		return m, nil

	case snapshotMsg:
		if msg.err != nil {
			// Keep showing the last good snapshot alongside the error.
			m.lastErr = msg.err.Error()
			m.logger.Warn("holdings fetch failed", "error", msg.err)
		} else {
			m.snapshot = msg.snap
			m.gotFirst = true
			m.lastErr = ""
			m.lastUpdate = time.Now()
		}
		m.refresh()
		return m, nil
	}

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func nextSortField(f holdings.Field) holdings.Field {
	for i, sf := range holdings.SortFields {
		if sf == f {
			return holdings.SortFields[(i+1)%len(holdings.SortFields)]
		}
	}
	return holdings.SortFields[0]
}

func (m *model) refresh() {
	if m.ready {
		m.viewport.SetContent(m.renderContent())
	}
}

func (m model) View() string {
	if !m.ready {
		return "Loading..."
	}

	visible := holdings.Derive(m.snapshot, m.query, m.sortSpec)

	arrow := "↓"
	if !m.sortSpec.Desc {
		arrow = "↑"
	}
	updated := "--:--:--"
	if !m.lastUpdate.IsZero() {
		updated = m.lastUpdate.Format("15:04:05")
	}
	headerText := fmt.Sprintf(
		" upfolio  %d/%d holdings    sort: %s %s    updated: %s ",
		len(visible), len(m.snapshot), sortLabels[m.sortSpec.Field], arrow, updated,
	)
	if m.query != "" {
		headerText += fmt.Sprintf("   filter: %q ", m.query)
	}
	headerBar := headerStyle.Render(padOrTrunc(headerText, m.width))
	if m.lastErr != "" {
		headerBar = errStyle.Render(padOrTrunc(" upfolio    refresh failed: "+m.lastErr+" ", m.width))
	}

	var footerBar string
	if m.filtering {
		footerBar = footerStyle.Render(padOrTrunc(" "+m.input.View()+"  (enter keep, esc clear)", m.width))
	} else {
		pct := m.viewport.ScrollPercent() * 100
		footerLeft := " q quit  / filter  s sort  d direction  v view  r refresh  l logout"
		footerRight := fmt.Sprintf("%.0f%% ", pct)
		gap := m.width - len(footerLeft) - len(footerRight)
		if gap < 0 {
			gap = 0
		}
		footerBar = footerStyle.Render(padOrTrunc(footerLeft+strings.Repeat(" ", gap)+footerRight, m.width))
	}

	return headerBar + "\n" + m.viewport.View() + "\n" + footerBar
}

func (m model) renderContent() string {
	visible := holdings.Derive(m.snapshot, m.query, m.sortSpec)

	if len(visible) == 0 {
		switch {
		case !m.gotFirst:
			return dimStyle.Render("  waiting for first refresh...")
		case m.query != "":
			return dimStyle.Render("  (no holdings match the filter)")
		default:
			return dimStyle.Render("  (no holdings)")
		}
	}

	if m.cardView {
		return m.renderCards(visible)
	}
	return m.renderTable(visible)
}

func (m model) renderTable(visible holdings.Snapshot) string {
	var b strings.Builder

	colLine := fmt.Sprintf(
		"  %-24s %-12s %-5s %7s %10s %10s %12s %8s  %-8s",
		"Company", "Symbol", "Exch", "Qty", "Avg", "LTP", "PnL", "Day %", "Product",
	)
	b.WriteString(colHeaderStyle.Render(colLine))
	b.WriteString("\n")

	for _, h := range visible {
		b.WriteString("  ")
		b.WriteString(companyStyle.Render(fmt.Sprintf("%-24s", truncate(h.CompanyName, 24))))
		b.WriteString(" ")
		b.WriteString(symbolStyle.Render(fmt.Sprintf("%-12s", truncate(h.Symbol(), 12))))
		b.WriteString(" ")
		b.WriteString(fmt.Sprintf("%-5s", h.Exchange))
		b.WriteString(fmt.Sprintf(" %7d", int64(h.Quantity)))
		b.WriteString(fmt.Sprintf(" %10.2f", float64(h.AveragePrice)))
		b.WriteString(fmt.Sprintf(" %10.2f", float64(h.LastPrice)))
		b.WriteString(" ")
		b.WriteString(pnlStyle(float64(h.PnL)).Render(fmt.Sprintf("%12.2f", float64(h.PnL))))
		b.WriteString(" ")
		b.WriteString(pnlStyle(float64(h.DayChangePercent)).Render(fmt.Sprintf("%7.2f%%", float64(h.DayChangePercent))))
		b.WriteString("  ")
		b.WriteString(dimStyle.Render(h.Product))
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) renderCards(visible holdings.Snapshot) string {
	perRow := m.width / 38
	if perRow < 1 {
		perRow = 1
	}

	cards := make([]string, 0, len(visible))
	for _, h := range visible {
		collateral := h.CollateralType
		if collateral == "" {
			collateral = "No Collateral"
		}
		var c strings.Builder
		c.WriteString(companyStyle.Render(truncate(h.CompanyName, 30)))
		c.WriteString("\n")
		c.WriteString(symbolStyle.Render(h.Symbol()))
		c.WriteString(dimStyle.Render("  " + h.Exchange))
		c.WriteString("\n")
		c.WriteString(fmt.Sprintf("Qty %d   Avg %.2f", int64(h.Quantity), float64(h.AveragePrice)))
		c.WriteString("\n")
		c.WriteString(fmt.Sprintf("LTP %.2f   ", float64(h.LastPrice)))
		c.WriteString(pnlStyle(float64(h.DayChangePercent)).Render(fmt.Sprintf("%.2f%%", float64(h.DayChangePercent))))
		c.WriteString("\n")
		c.WriteString("PnL ")
		c.WriteString(pnlStyle(float64(h.PnL)).Render(fmt.Sprintf("%.2f", float64(h.PnL))))
		c.WriteString("\n")
		c.WriteString(dimStyle.Render(h.Product + " · " + collateral))
		cards = append(cards, cardStyle.Render(c.String()))
	}

	var rows []string
	for i := 0; i < len(cards); i += perRow {
		end := i + perRow
		if end > len(cards) {
			end = len(cards)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}
	return strings.Join(rows, "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}

// padOrTrunc pads s with spaces to width, or truncates if longer.
func padOrTrunc(s string, width int) string {
	n := len(s)
	if n >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-n)
}
