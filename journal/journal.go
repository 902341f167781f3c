// Package journal persists patrol decisions as hourly-rotated,
// zstd-compressed JSON lines.
package journal

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/nstehr/vimy/vimy-patrol/patrol"
)

const hourLayout = "2006-01-02-15"

// Entry is one journal line.
type Entry struct {
	Time   time.Time `json:"time"`
	Player string    `json:"player,omitempty"`
	patrol.Decision
}

// Writer is shared by every connection; writes are serialized.
type Writer struct {
	baseDir string
	prefix  string
	now     func() time.Time

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewWriter(baseDir string) *Writer {
	return &Writer{
		baseDir: baseDir,
		prefix:  "decisions",
		now:     time.Now,
	}
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *Writer) Write(e Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now().UTC()
	if e.Time.IsZero() {
		e.Time = now
	}
	hour := now.Format(hourLayout)
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return fmt.Errorf("rotate journal: %w", err)
		}
	}

	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	if err := w.w.Flush(); err != nil {
		return err
	}
	// Emit the pending block so the entry is on disk before the frame ends.
	return w.enc.Flush()
}

// For returns a patrol.Recorder that stamps every decision with player.
func (w *Writer) For(player string) patrol.Recorder {
	return &playerRecorder{w: w, player: player}
}

type playerRecorder struct {
	w      *Writer
	player string
}

func (r *playerRecorder) Record(d patrol.Decision) error {
	return r.w.Write(Entry{Player: r.player, Decision: d})
}

func (w *Writer) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.baseDir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.pathForHour(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 128*1024)
	w.curHour = hour
	return nil
}

func (w *Writer) closeLocked() error {
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	w.curHour = ""
	return err1
}

func (w *Writer) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

// ReadFile decodes every entry of a journal file. A file that was appended
// to across several sessions holds several zstd frames; the decoder reads
// them back to back. A file still being written ends mid-frame: the entries
// flushed so far are returned along with the decode error.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("open zstd: %w", err)
	}
	defer dec.Close()

	var out []Entry
	jd := json.NewDecoder(dec)
	for {
		var e Entry
		err := jd.Decode(&e)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
		}
		out = append(out, e)
	}
}
