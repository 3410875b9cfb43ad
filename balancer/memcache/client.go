// Package memcache speaks the slice of memcached's line-oriented text
// protocol the rebalancer needs: stats retrieval and the slab
// maintenance commands.
package memcache

import (
	"bufio"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/slabmove/slabmove/balancer"
)

// statLine matches one per-class data line from either "stats items"
// (keys prefixed with "items:") or "stats slabs". Global stats lines
// such as "STAT active_slabs 5" deliberately don't match.
var statLine = regexp.MustCompile(`^STAT (?:items:)?(\d+):(\S+) (.*)$`)

// Client is one TCP connection to a memcached server. Not safe for
// concurrent use; the session drives it from a single loop. Reads and
// writes carry no per-call deadline: a stalled server stalls the
// control loop, which only ever acts on the server's own fresh state
// anyway.
type Client struct {
	conn net.Conn
	rw   *bufio.ReadWriter
}

// Dial connects with an establishment timeout.
func Dial(addr string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	return NewClient(conn), nil
}

// NewClient wraps an established connection. Split from Dial so tests
// can drive a Client over an in-memory pipe.
func NewClient(conn net.Conn) *Client {
	return &Client{
		conn: conn,
		rw:   bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn)),
	}
}

// Close tears the connection down.
func (c *Client) Close() error { return c.conn.Close() }

func (c *Client) send(cmd string) error {
	if _, err := c.rw.WriteString(cmd + "\r\n"); err != nil {
		return fmt.Errorf("send %q: %w", cmd, err)
	}
	if err := c.rw.Flush(); err != nil {
		return fmt.Errorf("send %q: %w", cmd, err)
	}
	return nil
}

func (c *Client) readLine() (string, error) {
	line, err := c.rw.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read reply: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// roundTrip sends one command and reads exactly one reply line.
func (c *Client) roundTrip(cmd string) (string, error) {
	if err := c.send(cmd); err != nil {
		return "", err
	}
	return c.readLine()
}

// DisableAutomove turns off the server's built-in page mover so the
// daemon has exclusive control. Issued once per connection; the
// server's one-line reply is returned for logging.
func (c *Client) DisableAutomove() (string, error) {
	return c.roundTrip("slabs automove 0")
}

// StatsSnapshot fetches "stats items" and "stats slabs" and merges
// both into a single per-class snapshot; items and slabs stats share
// slab class ids.
func (c *Client) StatsSnapshot() (balancer.Snapshot, error) {
	snap := make(balancer.Snapshot)
	for _, cmd := range []string{"stats items", "stats slabs"} {
		if err := c.send(cmd); err != nil {
			return nil, err
		}
		if err := c.readStats(snap); err != nil {
			return nil, fmt.Errorf("%s: %w", cmd, err)
		}
	}
	return snap, nil
}

// readStats consumes lines up to the terminating END, folding matching
// STAT lines into snap. Lines that don't name a slab class are
// skipped.
func (c *Client) readStats(snap balancer.Snapshot) error {
	for {
		line, err := c.readLine()
		if err != nil {
			return err
		}
		if strings.HasPrefix(line, "END") {
			return nil
		}
		m := statLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		class := balancer.ClassID(id)
		if snap[class] == nil {
			snap[class] = make(map[string]string)
		}
		snap[class][m[2]] = m[3]
	}
}

// Reassign asks the server to move one page from src to dst; dst 0
// means the global pool. The server's one-line verdict is returned for
// logging. The server may refuse (e.g. BUSY) without that being an
// error at this layer.
func (c *Client) Reassign(src, dst int) (string, error) {
	return c.roundTrip(fmt.Sprintf("slabs reassign %d %d", src, dst))
}
