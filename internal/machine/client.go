package machine

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"time"
)

// Punch is a single badge scan as reported by the device.
type Punch struct {
	MachineUserID string
	RecordTime    time.Time
}

// Client abstracts the biometric terminal. The real device speaks a
// line-based TCP protocol; tests substitute a fake.
//
//go:generate mockgen -source=client.go -destination=mock/client_mock.go -package=mock
type Client interface {
	// FetchLog pulls the device's attendance log buffer.
	FetchLog(ctx context.Context) ([]Punch, error)
	// Subscribe opens a live event stream. Punches are delivered on the
	// returned channel until the connection drops, at which point the
	// channel is closed and the error is returned via errCh.
	Subscribe(ctx context.Context) (<-chan Punch, <-chan error, error)
}

type tcpClient struct {
	host string
	port int

	dialTimeout time.Duration
}

func NewTCPClient(host string, port int) Client {
	return &tcpClient{host: host, port: port, dialTimeout: 5 * time.Second}
}

func (c *tcpClient) addr() string {
	return net.JoinHostPort(c.host, fmt.Sprintf("%d", c.port))
}

func (c *tcpClient) FetchLog(ctx context.Context) ([]Punch, error) {
	d := net.Dialer{Timeout: c.dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr())
	if err != nil {
		return nil, fmt.Errorf("dial device %s: %w", c.addr(), err)
	}
	defer conn.Close()

	if _, err := fmt.Fprintln(conn, "GETLOG"); err != nil {
		return nil, fmt.Errorf("request log: %w", err)
	}

	var punches []Punch
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == "END" {
			break
		}
		p, err := parsePunchLine(line)
		if err != nil {
			continue
		}
		punches = append(punches, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return punches, nil
}

func (c *tcpClient) Subscribe(ctx context.Context) (<-chan Punch, <-chan error, error) {
	d := net.Dialer{Timeout: c.dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr())
	if err != nil {
		return nil, nil, fmt.Errorf("dial device %s: %w", c.addr(), err)
	}

	if _, err := fmt.Fprintln(conn, "SUBSCRIBE"); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("subscribe: %w", err)
	}

	punches := make(chan Punch)
	errCh := make(chan error, 1)

	go func() {
		defer close(punches)
		defer conn.Close()

		go func() {
			<-ctx.Done()
			conn.Close()
		}()

		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			p, err := parsePunchLine(line)
			if err != nil {
				continue
			}
			select {
			case punches <- p:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errCh <- err
			return
		}
		errCh <- fmt.Errorf("device %s closed connection", c.addr())
	}()

	return punches, errCh, nil
}

// parsePunchLine decodes "userID<TAB>RFC3339 timestamp".
func parsePunchLine(line string) (Punch, error) {
	parts := strings.SplitN(line, "\t", 2)
	if len(parts) != 2 {
		return Punch{}, fmt.Errorf("malformed punch line %q", line)
	}
	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(parts[1]))
	if err != nil {
		return Punch{}, fmt.Errorf("malformed punch timestamp %q: %w", parts[1], err)
	}
	return Punch{MachineUserID: strings.TrimSpace(parts[0]), RecordTime: ts}, nil
}
