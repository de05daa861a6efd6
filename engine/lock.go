package engine

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

const lockFileName = ".kvs.lock"

// acquireLock takes a non-blocking exclusive flock on dir/.kvs.lock,
// enforcing single ownership of a data directory across processes instead
// of relying on an in-process lock alone. A second Open of the same
// directory, in this process or another, fails fast instead of racing the
// first engine's writes.
func acquireLock(dir string) (*os.File, error) {
	path := dir + string(os.PathSeparator) + lockFileName
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, fmt.Errorf("directory %s is already owned by another engine instance: %w", dir, err)
	}

	return f, nil
}

func releaseLock(f *os.File) error {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil {
		f.Close()
		return fmt.Errorf("unlock: %w", err)
	}
	return f.Close()
}
