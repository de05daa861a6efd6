package engine

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// compact rewrites the log into a fresh file containing exactly one record
// per live key, then atomically replaces kvs.log with it. No tombstones are
// copied: the absence of a key from the index is itself authoritative, so a
// Remove record is never needed in the compacted log.
//
// The new engine state (file handle, index, counters) is built by replaying
// the freshly renamed log from scratch and swapping the fields into e:
// build the fresh state locally, then exchange owned fields rather than
// mutate the open file in place.
func (e *LogEngine) compact() error {
	e.logger.Info("starting compaction", zap.Int("live_keys", len(e.index)), zap.Int("redundant_entries", e.redundant))

	tempPath := filepath.Join(e.dir, kvsTempFileName)
	logPath := filepath.Join(e.dir, logFileName)

	if err := e.writeCompactedLog(tempPath); err != nil {
		return err
	}

	if err := os.Rename(tempPath, logPath); err != nil {
		return fmt.Errorf("replace log with compacted copy: %w", err)
	}

	if err := e.file.Close(); err != nil {
		return fmt.Errorf("close old log after compaction: %w", err)
	}

	file, index, redundant, writePos, err := loadLog(logPath)
	if err != nil {
		return fmt.Errorf("reload compacted log: %w", err)
	}

	e.file = file
	e.writer = bufio.NewWriter(file)
	e.index = index
	e.redundant = redundant
	e.writePos = writePos

	e.logger.Info("compaction complete", zap.Int("live_keys", len(e.index)))
	return nil
}

// writeCompactedLog copies the authoritative record for every live key,
// verbatim plus a newline, into a fresh file at tempPath, truncating any
// stale leftover from a previous, interrupted compaction.
func (e *LogEngine) writeCompactedLog(tempPath string) error {
	temp, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create compaction file: %w", err)
	}

	for key, pos := range e.index {
		record := make([]byte, pos.Length)
		if _, err := e.file.ReadAt(record, int64(pos.Offset)); err != nil {
			temp.Close()
			return fmt.Errorf("read live record for key %q: %w", key, err)
		}
		if _, err := temp.Write(record); err != nil {
			temp.Close()
			return fmt.Errorf("write compacted record for key %q: %w", key, err)
		}
		if _, err := temp.Write([]byte{'\n'}); err != nil {
			temp.Close()
			return fmt.Errorf("write compacted record terminator for key %q: %w", key, err)
		}
	}

	if err := temp.Sync(); err != nil {
		temp.Close()
		return fmt.Errorf("sync compaction file: %w", err)
	}
	return temp.Close()
}
