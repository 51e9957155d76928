package pty

import (
	"log"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/peterje/shelll/internal/events"
)

const (
	readChunkSize = 4096
	replayBufSize = 100 * 1024 // 100KB replay buffer
	killGrace     = 2 * time.Second
)

// Session is one shell process plus its PTY master.
type Session struct {
	ID  string
	Cmd *exec.Cmd

	ptmx *os.File

	// writeMu guards input, ctrlMu guards geometry. They are independent so a
	// write and a resize on the same session do not wait on each other.
	writeMu sync.Mutex
	ctrlMu  sync.Mutex

	done     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
	// emitMu is held by the pump across its stop check and emit, and by
	// terminate while closing stop, so nothing is emitted once Close returns.
	emitMu sync.Mutex

	// Replay buffer for UI reloads
	replayMu  sync.Mutex
	replayBuf []byte
}

func newSession(id string, cmd *exec.Cmd, ptmx *os.File) *Session {
	return &Session{
		ID:   id,
		Cmd:  cmd,
		ptmx: ptmx,
		done: make(chan struct{}),
		stop: make(chan struct{}),
	}
}

// PID returns the shell's process ID.
func (s *Session) PID() int {
	if s.Cmd.Process == nil {
		return 0
	}
	return s.Cmd.Process.Pid
}

// Done returns a channel that is closed when the shell process exits.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) appendReplay(data []byte) {
	s.replayMu.Lock()
	defer s.replayMu.Unlock()
	s.replayBuf = append(s.replayBuf, data...)
	if len(s.replayBuf) > replayBufSize {
		s.replayBuf = s.replayBuf[len(s.replayBuf)-replayBufSize:]
	}
}

// Replay returns a copy of the most recent output.
func (s *Session) Replay() []byte {
	s.replayMu.Lock()
	defer s.replayMu.Unlock()
	cp := make([]byte, len(s.replayBuf))
	copy(cp, s.replayBuf)
	return cp
}

// write sends bytes to the shell exactly as given. The master is unbuffered,
// so there is nothing to flush.
func (s *Session) write(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := s.ptmx.Write(data)
	return err
}

func (s *Session) resize(rows, cols uint16) error {
	s.ctrlMu.Lock()
	defer s.ctrlMu.Unlock()
	return pty.Setsize(s.ptmx, &pty.Winsize{Rows: rows, Cols: cols})
}

func (s *Session) stopped() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

// pump drains the master and emits each chunk in read order. It ends silently
// on EOF, on a read error, or once the session is stopped.
func (s *Session) pump(emitter events.Emitter) {
	buf := make([]byte, readChunkSize)
	for {
		if s.stopped() {
			return
		}
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			s.emitMu.Lock()
			if !s.stopped() {
				s.appendReplay(data)
				emitter.Emit(events.NamePtyOutput, events.PtyOutput{SessionID: s.ID, Data: data})
			}
			s.emitMu.Unlock()
		}
		if err != nil || n == 0 {
			return
		}
	}
}

// wait reaps the shell and closes done.
func (s *Session) wait() {
	err := s.Cmd.Wait()
	if err != nil {
		log.Printf("pty: session %s exited: %v", s.ID, err)
	} else {
		log.Printf("pty: session %s exited", s.ID)
	}
	close(s.done)
}

// terminate stops the pump, hangs up the shell and closes the master. The
// shell is killed if it is still alive after killGrace.
func (s *Session) terminate() {
	s.stopOnce.Do(func() {
		s.emitMu.Lock()
		close(s.stop)
		s.emitMu.Unlock()

		select {
		case <-s.done:
		default:
			if s.Cmd.Process != nil {
				s.Cmd.Process.Signal(syscall.SIGHUP)
			}
		}
		s.ptmx.Close()

		go func() {
			select {
			case <-s.done:
			case <-time.After(killGrace):
				log.Printf("pty: session %s ignored hangup, killing pid %d", s.ID, s.PID())
				s.Cmd.Process.Kill()
			}
		}()
	})
}

var _ SessionHandle = (*Session)(nil)
