package models

import "time"

// Session statuses recorded in the history table.
const (
	StatusRunning = "running"
	StatusClosed  = "closed"
	StatusExited  = "exited"
	StatusStopped = "stopped" // left running by a previous process
)

type SessionRecord struct {
	ID        string     `json:"id"`
	PID       int        `json:"pid"`
	Shell     string     `json:"shell"`
	Cwd       string     `json:"cwd"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	EndedAt   *time.Time `json:"ended_at"`
}

type LiveSession struct {
	ID  string `json:"id"`
	PID int    `json:"pid"`
}

type ShellStatus struct {
	Name      string `json:"name"`
	Installed bool   `json:"installed"`
	Path      string `json:"path,omitempty"`
}

type FocusStatus struct {
	Running bool    `json:"running"`
	Target  *string `json:"target"`
}

type HealthResponse struct {
	Status    string      `json:"status"`
	Shell     ShellStatus `json:"shell"`
	Inspector bool        `json:"inspector"`
	Sessions  int         `json:"sessions"`
	Focus     FocusStatus `json:"focus"`
	History   bool        `json:"history"`
}
