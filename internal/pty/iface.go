package pty

// SessionHandle represents a handle to a running PTY session.
type SessionHandle interface {
	PID() int
	Replay() []byte
	Done() <-chan struct{}
}

// SessionManager manages PTY session lifecycles.
type SessionManager interface {
	Create() (string, error)
	Write(id string, data []byte)
	Resize(id string, rows, cols uint16)
	Close(id string)
	Get(id string) SessionHandle
	List() []string
	CloseAll()
}
