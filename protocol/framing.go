package protocol

import (
	"bufio"
	"fmt"
	"io"

	"github.com/rezkam/kvs/engine"
)

// WriteCommand writes cmd as a single newline-terminated line.
func WriteCommand(w io.Writer, cmd engine.Command) error {
	data, err := engine.EncodeCommand(cmd)
	if err != nil {
		return err
	}
	return writeLine(w, data)
}

// ReadCommand reads one newline-terminated request line and decodes it.
func ReadCommand(r *bufio.Reader) (engine.Command, error) {
	line, err := readLine(r)
	if err != nil {
		return engine.Command{}, err
	}
	cmd, err := engine.DecodeCommand(line)
	if err != nil {
		return engine.Command{}, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	return cmd, nil
}

// WriteResponse writes resp as a single newline-terminated line.
func WriteResponse(w io.Writer, resp Response) error {
	data, err := EncodeResponse(resp)
	if err != nil {
		return err
	}
	return writeLine(w, data)
}

// ReadResponse reads one newline-terminated response line and decodes it.
func ReadResponse(r *bufio.Reader) (Response, error) {
	line, err := readLine(r)
	if err != nil {
		return Response{}, err
	}
	return DecodeResponse(line)
}

func writeLine(w io.Writer, data []byte) error {
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// readLine reads up to and including the next newline, returning the line
// with the newline stripped. EOF with no data at all is returned verbatim
// so callers can distinguish a closed connection from a malformed one.
func readLine(r *bufio.Reader) ([]byte, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(line) == 0 {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	return line[:len(line)-1], nil
}
