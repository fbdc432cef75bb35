package connection

import (
	"bufio"
	"net"
	"strings"
	"time"
)

// DefaultTimeout bounds dialing and a single request/reply exchange.
const DefaultTimeout = 5 * time.Second

// SocketClient talks the line-based control protocol over a Unix socket.
type SocketClient struct {
	path    string
	timeout time.Duration
	conn    net.Conn
	reader  *bufio.Reader
}

// NewSocketClient creates a new socket client. A zero timeout selects
// DefaultTimeout.
func NewSocketClient(socketPath string, timeout time.Duration) *SocketClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &SocketClient{path: socketPath, timeout: timeout}
}

// Connect connects to the local socket.
func (c *SocketClient) Connect() error {
	conn, err := net.DialTimeout("unix", c.path, c.timeout)
	if err != nil {
		return err
	}
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

// Close closes the socket connection.
func (c *SocketClient) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.reader = nil
	return err
}

// Execute sends a command and returns the reply line without its
// trailing newline. It connects on first use.
func (c *SocketClient) Execute(cmd string) (string, error) {
	if c.conn == nil {
		if err := c.Connect(); err != nil {
			return "", err
		}
	}

	if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return "", err
	}

	if _, err := c.conn.Write([]byte(cmd + "\n")); err != nil {
		return "", err
	}

	response, err := c.reader.ReadString('\n')
	if err != nil {
		return "", err
	}

	return strings.TrimSuffix(response, "\n"), nil
}
