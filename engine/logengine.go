package engine

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// CommandPos is an index entry: the byte range in the log file of the most
// recent Set record for a key. The range excludes the trailing newline.
type CommandPos struct {
	Offset uint64
	Length uint64
}

const kvsTempFileName = "kvs_temp.log"

// LogEngine is the log-structured storage engine: an append-only log file
// plus an in-memory index mapping live keys to the byte range of their
// authoritative Set record.
type LogEngine struct {
	dir    string
	lock   *os.File
	file   *os.File
	writer *bufio.Writer

	writePos  uint64
	index     map[string]CommandPos
	redundant int

	threshold float64
	logger    *zap.Logger
}

// openLog creates dir if absent, opens (creating if absent) dir/kvs.log and
// replays it to rebuild the index and counters.
func openLog(dir string, opts ...Option) (*LogEngine, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory %s: %w", dir, err)
	}

	lock, err := acquireLock(dir)
	if err != nil {
		return nil, err
	}

	cfg := newLogEngineConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			releaseLock(lock)
			return nil, err
		}
	}

	path := filepath.Join(dir, logFileName)
	file, index, redundant, writePos, err := loadLog(path)
	if err != nil {
		releaseLock(lock)
		return nil, err
	}

	return &LogEngine{
		dir:       dir,
		lock:      lock,
		file:      file,
		writer:    bufio.NewWriter(file),
		writePos:  writePos,
		index:     index,
		redundant: redundant,
		threshold: cfg.compactionThreshold,
		logger:    cfg.logger,
	}, nil
}

// loadLog opens path (creating it if absent) and replays it sequentially to
// rebuild the index, the redundant-entry count and the write-position
// counter. A torn trailing record (a write interrupted by a crash) is
// dropped and the file truncated back to the last complete record, which
// keeps the write-position counter equal to the file size (invariant I3).
func loadLog(path string) (*os.File, map[string]CommandPos, int, uint64, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, nil, 0, 0, fmt.Errorf("open log file %s: %w", path, err)
	}

	index := make(map[string]CommandPos)
	redundant := 0
	var offset uint64

	reader := bufio.NewReader(file)
	for {
		line, readErr := reader.ReadBytes('\n')
		if readErr != nil {
			if readErr == io.EOF {
				break // drop any unterminated trailing bytes: a torn write.
			}
			file.Close()
			return nil, nil, 0, 0, fmt.Errorf("read log file %s: %w", path, readErr)
		}

		recordLen := len(line) - 1 // exclude the trailing newline
		cmd, decErr := DecodeCommand(line[:recordLen])
		if decErr != nil {
			file.Close()
			return nil, nil, 0, 0, decErr
		}

		switch {
		case cmd.IsSet():
			if _, exists := index[cmd.Key]; exists {
				redundant++
			}
			index[cmd.Key] = CommandPos{Offset: offset, Length: uint64(recordLen)}
		case cmd.IsRemove():
			delete(index, cmd.Key) // a tombstone preceding its target is a no-op, not an error
		default:
			file.Close()
			return nil, nil, 0, 0, fmt.Errorf("%w: get record found in log at offset %d", ErrCorruption, offset)
		}

		offset += uint64(recordLen) + 1
	}

	if err := file.Truncate(int64(offset)); err != nil {
		file.Close()
		return nil, nil, 0, 0, fmt.Errorf("truncate torn tail of %s: %w", path, err)
	}
	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		file.Close()
		return nil, nil, 0, 0, fmt.Errorf("seek to end of %s: %w", path, err)
	}

	return file, index, redundant, offset, nil
}

// Get returns the value from the most recent Set for key, or ok=false if no
// such entry is live. It flushes pending writes first so it always
// observes its own prior writes.
func (e *LogEngine) Get(key string) (string, bool, error) {
	if err := e.writer.Flush(); err != nil {
		return "", false, fmt.Errorf("flush log before read: %w", err)
	}

	pos, ok := e.index[key]
	if !ok {
		return "", false, nil
	}

	buf := make([]byte, pos.Length)
	if _, err := e.file.ReadAt(buf, int64(pos.Offset)); err != nil {
		return "", false, fmt.Errorf("read record at offset %d: %w", pos.Offset, err)
	}

	cmd, err := DecodeCommand(buf)
	if err != nil {
		return "", false, err
	}
	if !cmd.IsSet() {
		return "", false, fmt.Errorf("%w: index pointed at a non-set record for key %q", ErrCorruption, key)
	}

	return cmd.Value, true, nil
}

// Set appends a Set record, updates the index, and compacts the log if the
// ratio of redundant entries to live keys has crossed the threshold. Once
// appendRecord returns, the Set itself has already persisted, so a
// subsequent compaction failure is reported only to the log, never as
// Set's own error: a caller that sees a nil error here is guaranteed the
// value survives a restart, whether or not compaction ran.
func (e *LogEngine) Set(key, value string) error {
	data, err := EncodeCommand(SetCommand(key, value))
	if err != nil {
		return err
	}

	posBefore := e.writePos
	if err := e.appendRecord(data); err != nil {
		return err
	}
	recordLen := uint64(len(data))

	if _, exists := e.index[key]; exists {
		e.redundant++
	}
	e.index[key] = CommandPos{Offset: posBefore, Length: recordLen}

	if e.shouldCompact() {
		if err := e.compact(); err != nil {
			e.logger.Error("compaction failed", zap.Error(err))
		}
	}
	return nil
}

// Remove deletes key from the index and appends a Remove record. It
// returns ErrKeyNotFound, leaving the log untouched, if key is absent.
func (e *LogEngine) Remove(key string) error {
	if _, ok := e.index[key]; !ok {
		return ErrKeyNotFound
	}

	data, err := EncodeCommand(RemoveCommand(key))
	if err != nil {
		return err
	}
	if err := e.appendRecord(data); err != nil {
		return err
	}

	delete(e.index, key)
	return nil
}

// appendRecord writes data followed by a single newline, flushing the
// buffer so a crash loses at most the current in-flight record.
func (e *LogEngine) appendRecord(data []byte) error {
	if _, err := e.writer.Write(data); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	if err := e.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write record terminator: %w", err)
	}
	if err := e.writer.Flush(); err != nil {
		return fmt.Errorf("flush record: %w", err)
	}
	e.writePos += uint64(len(data)) + 1
	return nil
}

func (e *LogEngine) shouldCompact() bool {
	if len(e.index) == 0 {
		return false
	}
	return float64(e.redundant)/float64(len(e.index)) > e.threshold
}

// Close flushes any buffered writes, syncs and closes the log file, and
// releases the single-owner lock. Any failure to flush here is surfaced,
// not swallowed: it would otherwise silently violate the durability
// contract of whichever write happened last.
func (e *LogEngine) Close() error {
	if err := e.writer.Flush(); err != nil {
		return fmt.Errorf("flush log on close: %w", err)
	}
	if err := e.file.Sync(); err != nil {
		return fmt.Errorf("sync log on close: %w", err)
	}
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	return releaseLock(e.lock)
}
