package pty

import (
	"bytes"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Replay holds exactly the tail of everything appended, byte for byte.
func TestReplayBufferTailProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	chunk := gen.SliceOf(gen.UInt8())

	properties.Property("replay is the tail of all output", prop.ForAll(
		func(chunks [][]byte, repeat int) bool {
			s := newSession("s", nil, nil)
			var all []byte
			for r := 0; r < repeat; r++ {
				for _, c := range chunks {
					s.appendReplay(c)
					all = append(all, c...)
				}
			}
			want := all
			if len(want) > replayBufSize {
				want = want[len(want)-replayBufSize:]
			}
			return bytes.Equal(s.Replay(), want)
		},
		gen.SliceOf(chunk),
		gen.IntRange(1, 400),
	))

	properties.TestingRun(t)
}

func TestReplayReturnsCopy(t *testing.T) {
	s := newSession("s", nil, nil)
	s.appendReplay([]byte("abc"))
	got := s.Replay()
	got[0] = 'x'
	if string(s.Replay()) != "abc" {
		t.Errorf("Replay() aliases internal buffer: %q", s.Replay())
	}
}

func TestStoppedAfterTerminateFlag(t *testing.T) {
	s := newSession("s", nil, nil)
	if s.stopped() {
		t.Fatal("new session reports stopped")
	}
	close(s.stop)
	if !s.stopped() {
		t.Error("stopped() = false after stop closed")
	}
}
