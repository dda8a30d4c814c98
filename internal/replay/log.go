package replay

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/events"
)

// Extension is appended to the game ID to name a log file.
const Extension = ".jsonl.zst"

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("replay log closed")

// Path returns where the log for gameID lives under dir.
func Path(dir, gameID string) string {
	return filepath.Join(dir, gameID+Extension)
}

// Writer appends events as zstd-compressed JSON lines. It is also an
// events.Subscriber, so it can be attached to a live game and record every
// event as it is committed.
type Writer struct {
	mu     sync.Mutex
	f      *os.File
	enc    *zstd.Encoder
	w      *bufio.Writer
	n      int
	err    error
	closed bool
}

// NewWriter writes the log to w. Closing the Writer does not close w.
func NewWriter(w io.Writer) (*Writer, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	return &Writer{enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}, nil
}

// Create opens path for writing, creating parent directories as needed.
func Create(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.f = f
	return w, nil
}

// WriteEvent appends one event.
func (w *Writer) WriteEvent(ev events.Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", ev.Type(), err)
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	w.n++
	return nil
}

// WriteHistory appends every event of h in order.
func (w *Writer) WriteHistory(h *events.History) error {
	for _, ev := range h.Events() {
		if err := w.WriteEvent(ev); err != nil {
			return err
		}
	}
	return nil
}

// Len is the number of events written so far.
func (w *Writer) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.n
}

// Flush pushes buffered lines through the encoder without ending the frame.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if err := w.w.Flush(); err != nil {
		return err
	}
	return w.enc.Flush()
}

// Close finishes the stream. It reports the first error a subscribed write
// hit, if any.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	err := w.w.Flush()
	if cerr := w.enc.Close(); err == nil {
		err = cerr
	}
	if w.f != nil {
		if cerr := w.f.Close(); err == nil {
			err = cerr
		}
	}
	if w.err != nil {
		return w.err
	}
	return err
}

func (w *Writer) ID() string               { return "replay-writer" }
func (w *Writer) InterestedIn(string) bool { return true }

// HandleEvent records ev. The bus has nowhere to return an error to, so the
// first one is kept for Close.
func (w *Writer) HandleEvent(ev events.Event) {
	if err := w.WriteEvent(ev); err != nil {
		w.mu.Lock()
		if w.err == nil {
			w.err = err
		}
		w.mu.Unlock()
	}
}

// Read decodes every event from a log stream.
func Read(r io.Reader) ([]events.Event, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer dec.Close()

	var out []events.Event
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		ev, err := events.Unmarshal(sc.Bytes())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Open reads the log file at path.
func Open(path string) ([]events.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	evs, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return evs, nil
}
