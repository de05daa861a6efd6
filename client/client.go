// Package client implements the one-connection-per-command client for the
// kvs wire protocol.
package client

import (
	"bufio"
	"fmt"
	"net"

	"github.com/rezkam/kvs/engine"
	"github.com/rezkam/kvs/protocol"
)

// ErrKeyNotFound mirrors engine.ErrKeyNotFound for callers that only ever
// see the client's view of a Remove on an absent key.
var ErrKeyNotFound = engine.ErrKeyNotFound

// Client dials addr fresh for every command; there is no connection reuse.
type Client struct {
	addr string
}

// New returns a Client that connects to addr for every command.
func New(addr string) *Client {
	return &Client{addr: addr}
}

func (c *Client) roundTrip(cmd engine.Command) (protocol.Response, error) {
	conn, err := net.Dial("tcp", c.addr)
	if err != nil {
		return protocol.Response{}, fmt.Errorf("connect to %s: %w", c.addr, err)
	}
	defer conn.Close()

	if err := protocol.WriteCommand(conn, cmd); err != nil {
		return protocol.Response{}, err
	}

	resp, err := protocol.ReadResponse(bufio.NewReader(conn))
	if err != nil {
		return protocol.Response{}, err
	}
	return resp, nil
}

// Get fetches key's value. ok is false, with a nil error, if the key is
// absent.
func (c *Client) Get(key string) (value string, ok bool, err error) {
	resp, err := c.roundTrip(engine.GetCommand(key))
	if err != nil {
		return "", false, err
	}
	return resp.Value, resp.Found, nil
}

// Set stores key/value.
func (c *Client) Set(key, value string) error {
	resp, err := c.roundTrip(engine.SetCommand(key, value))
	if err != nil {
		return err
	}
	if resp.IsSetFailure() {
		return fmt.Errorf("set failed: %s", resp.Message)
	}
	return nil
}

// Remove deletes key. It returns ErrKeyNotFound if key was absent, the same
// error the engine would have produced locally.
func (c *Client) Remove(key string) error {
	resp, err := c.roundTrip(engine.RemoveCommand(key))
	if err != nil {
		return err
	}
	if resp.IsRemoveFailure() {
		return ErrKeyNotFound
	}
	return nil
}
