//go:build darwin

package focus

import (
	"bytes"
	"context"
	"log"
	"os/exec"
	"strings"
	"time"
)

// Supported reports whether this platform can inspect applications.
const Supported = true

const scriptTimeout = 2 * time.Second

// Scripts run under osascript's JavaScript bridge against NSWorkspace.
// activationPolicy 0 is NSApplicationActivationPolicyRegular.
const (
	frontmostScript = `ObjC.import('AppKit');
var app = $.NSWorkspace.sharedWorkspace.frontmostApplication;
app.isNil() ? '' : ObjC.unwrap(app.localizedName) || '';`

	runningAppsScript = `ObjC.import('AppKit');
var apps = $.NSWorkspace.sharedWorkspace.runningApplications;
var out = [];
for (var i = 0; i < apps.count; i++) {
  var a = apps.objectAtIndex(i);
  if (a.activationPolicy != 0) continue;
  var name = ObjC.unwrap(a.localizedName);
  if (!name) continue;
  out.push({name: name, bundle_id: ObjC.unwrap(a.bundleIdentifier) || ''});
}
JSON.stringify(out);`
)

type workspaceInspector struct{}

// NewInspector returns the NSWorkspace-backed inspector.
func NewInspector() Inspector {
	return workspaceInspector{}
}

func runScript(ctx context.Context, script string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, scriptTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, "osascript", "-l", "JavaScript", "-e", script).Output()
	if err != nil {
		return nil, err
	}
	return bytes.TrimSpace(out), nil
}

func (workspaceInspector) FrontmostApplicationName(ctx context.Context) (string, bool) {
	out, err := runScript(ctx, frontmostScript)
	if err != nil {
		log.Printf("focus: frontmost query failed: %v", err)
		return "", false
	}
	name := strings.TrimSpace(string(out))
	// An app with an empty localized name is treated as no frontmost app.
	if name == "" {
		return "", false
	}
	return name, true
}

func (workspaceInspector) RunningApplications(ctx context.Context) []RunningApp {
	out, err := runScript(ctx, runningAppsScript)
	if err != nil {
		log.Printf("focus: running apps query failed: %v", err)
		return []RunningApp{}
	}
	apps, err := parseApps(out)
	if err != nil {
		log.Printf("focus: %v", err)
		return []RunningApp{}
	}
	return apps
}
