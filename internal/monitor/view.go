package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gpufleet/gpumon/internal/util"
)

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	b.WriteString(m.renderHostTable())
	b.WriteString("\n")

	b.WriteString(m.renderProblems())

	if m.showDetails {
		b.WriteString("\n")
		b.WriteString(SectionTitleStyle.Render("Devices"))
		b.WriteString("\n")
		if m.viewportReady {
			b.WriteString(m.detailViewport.View())
		} else {
			b.WriteString(m.renderDetailRows())
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader renders the dashboard header with summary stats.
func (m Model) renderHeader() string {
	okCount := 0
	for _, h := range m.vm.Hosts {
		if h.Status == StatusOK || h.Status == StatusUpdating {
			okCount++
		}
	}

	title := TitleStyle.Render("gpumon")
	stats := LabelStyle.Render(fmt.Sprintf(" | %s | %d %s | %d responding",
		m.vm.Cluster,
		len(m.vm.Hosts),
		util.Pluralize(len(m.vm.Hosts), "host", "hosts"),
		okCount))

	return HeaderStyle.Render(title + stats)
}

// renderHostTable renders one row per host with aggregate columns.
func (m Model) renderHostTable() string {
	if len(m.vm.Hosts) == 0 {
		return LabelStyle.Render("No hosts configured")
	}

	var b strings.Builder
	b.WriteString(TableHeaderStyle.Render(fmt.Sprintf(
		"  %-14s %-5s %-5s %-6s %-12s %-14s %-6s %-6s %-8s %s",
		"HOST", "GPUS", "BUSY", "AVAIL", "AVAIL IDS", "UTIL", "MEM%", "TEMP", "POWER", "TYPES")))
	b.WriteString("\n")

	for _, h := range m.vm.Hosts {
		b.WriteString(m.renderHostRow(h))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderHostRow(h HostSummary) string {
	glyph := StatusStyle(h.Status).Render(StatusGlyph(h.Status, m.spinnerFrame))
	name := HostNameStyle.Render(fmt.Sprintf("%-14s", h.Host))

	switch {
	case h.Status == StatusInitializing:
		return fmt.Sprintf("%s %s %s", glyph, name, MutedStyle.Render("initializing..."))
	case h.Err != "":
		row := fmt.Sprintf("%s %s %s", glyph, name, ErrorTextStyle.Render(h.Err))
		if h.Updating {
			row += UpdatingStyle.Render(" (updating)")
		}
		return row
	case h.NoData:
		return fmt.Sprintf("%s %s %s", glyph, name, MutedStyle.Render("no device data"))
	}

	busy := fmt.Sprintf("%d", h.BusyCount)
	if h.ActivityUnknown {
		busy = "?"
	}

	row := fmt.Sprintf("%s %s %-5d %-5s %-6d %-12s %s %s %s %-8s %s",
		glyph,
		name,
		h.DeviceTotal,
		busy,
		h.Available,
		h.AvailableIDs,
		m.renderUtilCell(h.AvgUtilization),
		renderMetricCell(h.AvgMemoryPct, UtilizationSeverity, "%5.1f%%"),
		renderMetricCell(h.AvgTemperature, TemperatureSeverity, "%4.0fC "),
		renderPowerCell(h.TotalPowerDraw),
		MutedStyle.Render(util.JoinOrDefault(h.DeviceTypes, "-")))

	if h.Updating {
		row += UpdatingStyle.Render(" (updating)")
	}
	return row
}

// renderUtilCell renders the utilization bar plus percentage, or N/A.
func (m Model) renderUtilCell(pct *float64) string {
	if pct == nil {
		return MutedStyle.Render(fmt.Sprintf("%-14s", "N/A"))
	}
	return UtilizationBar(8, *pct) + SeverityStyle(UtilizationSeverity(*pct)).Render(fmt.Sprintf(" %3.0f%%", *pct))
}

// renderMetricCell formats an optional metric colored by its severity.
func renderMetricCell(v *float64, classify func(float64) Severity, format string) string {
	if v == nil {
		return MutedStyle.Render("  N/A ")
	}
	return SeverityStyle(classify(*v)).Render(fmt.Sprintf(format, *v))
}

func renderPowerCell(w *float64) string {
	if w == nil {
		return MutedStyle.Render(fmt.Sprintf("%-8s", "N/A"))
	}
	return ValueStyle.Render(fmt.Sprintf("%-8s", fmt.Sprintf("%.0fW", *w)))
}

// renderProblems renders the attention section, or the all-clear panel.
func (m Model) renderProblems() string {
	var b strings.Builder
	b.WriteString(SectionTitleStyle.Render("Problems"))
	b.WriteString("\n")

	if m.vm.AllClear {
		b.WriteString(AllClearStyle.Render("  ✓ all clear"))
		b.WriteString("\n")
		return b.String()
	}
	if len(m.vm.Problems) == 0 {
		b.WriteString(MutedStyle.Render("  waiting for first results..."))
		b.WriteString("\n")
		return b.String()
	}

	for _, p := range m.vm.Problems {
		b.WriteString(renderProblemRow(p))
		b.WriteString("\n")
	}
	return b.String()
}

func renderProblemRow(p ProblemRow) string {
	sev := SeverityStyle(p.Severity).Render(fmt.Sprintf("%-8s", strings.ToUpper(p.Severity.String())))

	loc := p.Host
	if p.Index >= 0 {
		loc = fmt.Sprintf("%s gpu%d", p.Host, p.Index)
	}

	return fmt.Sprintf("  %s %-20s %s",
		sev,
		HostNameStyle.Render(loc),
		LabelStyle.Render(strings.Join(p.Issues, ", ")))
}

// renderDetailRows renders the full per-device listing for the viewport.
func (m Model) renderDetailRows() string {
	if len(m.vm.Details) == 0 {
		return MutedStyle.Render("  no device data yet")
	}

	var b strings.Builder
	b.WriteString(TableHeaderStyle.Render(fmt.Sprintf(
		"  %-14s %-4s %-24s %-5s %-6s %-14s %-6s %s",
		"HOST", "GPU", "NAME", "BUSY", "UTIL", "MEMORY", "TEMP", "POWER")))
	b.WriteString("\n")

	for _, d := range m.vm.Details {
		b.WriteString(renderDetailRow(d))
		b.WriteString("\n")
	}
	return b.String()
}

func renderDetailRow(d DetailRow) string {
	host := ValueStyle.Render(fmt.Sprintf("%-14s", d.Host))

	if d.Err != "" || d.Metrics == nil {
		idx := "-"
		if d.Index >= 0 {
			idx = fmt.Sprintf("%d", d.Index)
		}
		return fmt.Sprintf("  %s %-4s %s", host, idx, ErrorTextStyle.Render(d.Err))
	}

	met := d.Metrics
	busy := MutedStyle.Render("idle")
	if met.Busy {
		busy = SeverityStyle(SeverityWarning).Render("busy")
	}

	memory := fmt.Sprintf("%.0f/%.0f MiB", met.MemoryUsed, met.MemoryTotal)

	power := "N/A"
	if met.PowerDraw != nil {
		power = fmt.Sprintf("%.0fW", *met.PowerDraw)
		if met.PowerLimit != nil {
			power = fmt.Sprintf("%.0f/%.0fW", *met.PowerDraw, *met.PowerLimit)
		}
	}

	return fmt.Sprintf("  %s %-4d %-24s %s %s %-14s %s %s",
		host,
		d.Index,
		MutedStyle.Render(truncate(d.Name, 24)),
		lipgloss.NewStyle().Render(fmt.Sprintf("%-5s", busy)),
		SeverityStyle(d.UtilSeverity).Render(fmt.Sprintf("%4.0f%%", met.Utilization)),
		memory,
		SeverityStyle(d.TempSeverity).Render(fmt.Sprintf("%4.0fC", met.Temperature)),
		ValueStyle.Render(power))
}

// renderFooter renders the keyboard help footer.
func (m Model) renderFooter() string {
	hints := []string{
		"q quit",
		"d details",
	}
	if m.showDetails {
		hints = append(hints, "↑↓ scroll")
	}
	return FooterStyle.Render(strings.Join(hints, " | "))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
