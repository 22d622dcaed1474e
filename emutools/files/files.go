package files

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrTooLarge is returned when a file does not fit the allowed size
var ErrTooLarge = errors.New("file too large")

// Load reads a whole binary file (ROM image, character set) that must not
// be larger than maxSize bytes.
func Load(path string, maxSize int) ([]byte, error) {
	buf := make([]byte, maxSize)
	n, err := LoadInto(path, buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// LoadInto reads a whole file into buf and returns the number of bytes read.
// It fails with ErrTooLarge if the file has more than len(buf) bytes.
func LoadInto(path string, buf []byte) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	n, err := io.ReadFull(f, buf)
	switch {
	case err == nil:
		// buffer full: the file must end here
		var probe [1]byte
		if m, _ := f.Read(probe[:]); m > 0 {
			return 0, fmt.Errorf("%s: %w (limit %d bytes)", path, ErrTooLarge, len(buf))
		}
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
	default:
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return n, nil
}
