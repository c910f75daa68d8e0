// ABOUTME: Wizard flow selection and mode-level policy
// ABOUTME: Remote gateways always take the advanced flow

package wizard

import (
	"fmt"

	"github.com/2389/coven-setup/internal/config"
)

// Flow is the onboarding path: minimal prompts with defaults, or full
// manual control.
type Flow string

const (
	FlowQuickstart Flow = "quickstart"
	FlowAdvanced   Flow = "advanced"
)

// Notice records an automatic adjustment the wizard made on the operator's
// behalf. Notices are informational and never block completion.
type Notice struct {
	Field  string
	Reason string
}

// ParseFlow parses an explicit flow value. Unknown values are a hard input
// error, never a silent fallback.
func ParseFlow(s string) (Flow, error) {
	switch Flow(s) {
	case FlowQuickstart, FlowAdvanced:
		return Flow(s), nil
	default:
		return "", fmt.Errorf("unknown flow %q (want quickstart or advanced)", s)
	}
}

// SelectFlow resolves which flow the run takes. An explicit value is
// honored outright, with one exception: a remote gateway always forces the
// advanced flow, surfacing a notice when that overrides the choice. With no
// explicit value the default is quickstart (the orchestrator prompts
// interactively and passes the answer in as explicit).
func SelectFlow(explicit string, modeHint config.GatewayMode, existingConfigPresent bool) (Flow, []Notice, error) {
	flow := FlowQuickstart
	if explicit != "" {
		parsed, err := ParseFlow(explicit)
		if err != nil {
			return "", nil, err
		}
		flow = parsed
	}

	var notices []Notice
	if modeHint == config.GatewayRemote && flow != FlowAdvanced {
		flow = FlowAdvanced
		notices = append(notices, Notice{Field: "flow", Reason: "remote-requires-advanced"})
	}
	return flow, notices, nil
}
