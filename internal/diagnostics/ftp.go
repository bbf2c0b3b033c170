package diagnostics

import (
	"fmt"
	"io"
	"net"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
)

// ftpClient is a minimal FTP client speaking just enough of RFC 959 to
// authenticate and STOR a file over a passive data connection, per
// spec.md §4.4's GetDiagnostics upload step. No third-party FTP
// library exists anywhere in the retrieved pack, so this is built
// directly on net/textproto.
type ftpClient struct {
	conn *textproto.Conn
	tcp  net.Conn
}

func dialFTP(target *url.URL) (*ftpClient, error) {
	host := target.Host
	if target.Port() == "" {
		host = net.JoinHostPort(target.Hostname(), "21")
	}
	tcp, err := net.Dial("tcp", host)
	if err != nil {
		return nil, fmt.Errorf("ftp: dial %s: %w", host, err)
	}
	conn := textproto.NewConn(tcp)

	if _, _, err := conn.ReadResponse(220); err != nil {
		tcp.Close()
		return nil, fmt.Errorf("ftp: no 220 greeting: %w", err)
	}

	client := &ftpClient{conn: conn, tcp: tcp}

	user := target.User.Username()
	if user == "" {
		user = "anonymous"
	}
	pass, _ := target.User.Password()

	if err := client.send(331, "USER %s", user); err != nil {
		client.Close()
		return nil, err
	}
	if err := client.send(230, "PASS %s", pass); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func (c *ftpClient) send(expectCode int, format string, args ...interface{}) error {
	if err := c.conn.PrintfLine(format, args...); err != nil {
		return err
	}
	code, msg, err := c.conn.ReadResponse(expectCode)
	if err != nil {
		return fmt.Errorf("ftp: got %d %q, wanted %d: %w", code, msg, expectCode, err)
	}
	return nil
}

func (c *ftpClient) Close() error {
	return c.tcp.Close()
}

// passive issues PASV and dials the data connection it advertises.
func (c *ftpClient) passive() (net.Conn, error) {
	if err := c.conn.PrintfLine("PASV"); err != nil {
		return nil, err
	}
	_, msg, err := c.conn.ReadResponse(227)
	if err != nil {
		return nil, fmt.Errorf("ftp: PASV failed: %w", err)
	}
	addr, err := parsePASV(msg)
	if err != nil {
		return nil, err
	}
	return net.Dial("tcp", addr)
}

// parsePASV extracts the "h1,h2,h3,h4,p1,p2" tuple from a 227 response
// like `227 Entering Passive Mode (127,0,0,1,200,13).`
func parsePASV(msg string) (string, error) {
	open := strings.IndexByte(msg, '(')
	shut := strings.IndexByte(msg, ')')
	if open < 0 || shut < 0 || shut < open {
		return "", fmt.Errorf("ftp: unparseable PASV response %q", msg)
	}
	parts := strings.Split(msg[open+1:shut], ",")
	if len(parts) != 6 {
		return "", fmt.Errorf("ftp: unparseable PASV tuple %q", msg)
	}
	ip := strings.Join(parts[0:4], ".")
	p1, err1 := strconv.Atoi(parts[4])
	p2, err2 := strconv.Atoi(parts[5])
	if err1 != nil || err2 != nil {
		return "", fmt.Errorf("ftp: unparseable PASV port in %q", msg)
	}
	port := p1*256 + p2
	return net.JoinHostPort(ip, strconv.Itoa(port)), nil
}

// store uploads the contents of r to remotePath over a fresh passive
// data connection, reporting progress via onProgress once the
// transfer begins.
func (c *ftpClient) store(remotePath string, r io.Reader, onProgress func()) error {
	data, err := c.passive()
	if err != nil {
		return err
	}

	if err := c.conn.PrintfLine("STOR %s", remotePath); err != nil {
		data.Close()
		return err
	}
	if _, _, err := c.conn.ReadResponse(150); err != nil {
		data.Close()
		return fmt.Errorf("ftp: STOR not accepted: %w", err)
	}

	if onProgress != nil {
		onProgress()
	}

	_, copyErr := io.Copy(data, r)
	closeErr := data.Close()
	if copyErr != nil {
		return fmt.Errorf("ftp: upload failed: %w", copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("ftp: closing data connection: %w", closeErr)
	}

	if _, _, err := c.conn.ReadResponse(226); err != nil {
		return fmt.Errorf("ftp: transfer not confirmed complete: %w", err)
	}
	return nil
}
