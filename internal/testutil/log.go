package testutil

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/zjrosen/anpconf/internal/log"
)

// LogBuffer is a goroutine-safe log sink.
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns everything logged so far.
func (b *LogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// CaptureLog redirects the global logger to a buffer at debug level until
// the test ends.
func CaptureLog(t *testing.T) *LogBuffer {
	t.Helper()
	buf := &LogBuffer{}
	log.SetOutput(buf)
	log.SetMinLevel(log.LevelDebug)
	log.SetEnabled(true)
	t.Cleanup(func() {
		log.SetOutput(os.Stdout)
		log.SetMinLevel(log.LevelInfo)
	})
	return buf
}
