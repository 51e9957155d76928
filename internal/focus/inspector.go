// Package focus tracks which desktop application has input focus and reports
// changes to the UI.
package focus

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// RunningApp is a user-facing application currently running.
type RunningApp struct {
	Name     string `json:"name"`
	BundleID string `json:"bundle_id"`
}

// Inspector queries the OS for application state. Implementations return
// empty results, never errors, when the platform cannot answer.
type Inspector interface {
	FrontmostApplicationName(ctx context.Context) (string, bool)
	RunningApplications(ctx context.Context) []RunningApp
}

// NoopInspector is used on platforms without a native implementation.
type NoopInspector struct{}

func (NoopInspector) FrontmostApplicationName(context.Context) (string, bool) { return "", false }

func (NoopInspector) RunningApplications(context.Context) []RunningApp { return []RunningApp{} }

// sortApps orders apps by name, ignoring case.
func sortApps(apps []RunningApp) {
	sort.SliceStable(apps, func(i, j int) bool {
		return strings.ToLower(apps[i].Name) < strings.ToLower(apps[j].Name)
	})
}

// parseApps decodes the JSON list printed by the workspace script, drops
// entries without a name and sorts the rest.
func parseApps(data []byte) ([]RunningApp, error) {
	var raw []RunningApp
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode running apps: %w", err)
	}
	apps := make([]RunningApp, 0, len(raw))
	for _, a := range raw {
		if a.Name == "" {
			continue
		}
		apps = append(apps, a)
	}
	sortApps(apps)
	return apps, nil
}
