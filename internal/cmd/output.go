package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/Iron-Ham/foreman/internal/registry"
	"github.com/charmbracelet/lipgloss"
)

// agentOutput selects machine-readable single-line JSON output. Automated
// agents set it (or the FOREMAN_AGENT_OUTPUT env var via viper) so every
// command emits exactly one parseable line.
var agentOutput bool

// printJSON writes v as a single JSON line to stdout.
func printJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// actionResult is the machine-readable acknowledgment for mutating
// commands that return no richer payload.
type actionResult struct {
	Status  string `json:"status"`
	Action  string `json:"action"`
	TaskID  string `json:"task_id,omitempty"`
	AgentID string `json:"agent_id,omitempty"`
}

// Status glyph styling for human output.
var (
	styleUnclaimed = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleClaimed   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	styleBlocked   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleReview    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	styleDone      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleDim       = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// statusGlyph returns the styled checkbox-style marker for a status.
func statusGlyph(s registry.Status) string {
	switch s {
	case registry.StatusUnclaimed:
		return styleUnclaimed.Render("[ ]")
	case registry.StatusClaimed:
		return styleClaimed.Render("[~]")
	case registry.StatusBlocked:
		return styleBlocked.Render("[!]")
	case registry.StatusReview:
		return styleReview.Render("[?]")
	case registry.StatusDone:
		return styleDone.Render("[✓]")
	default:
		return styleDim.Render("[?]")
	}
}
