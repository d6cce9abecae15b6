package notify

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSMTP is a minimal scripted SMTP server for one connection at a time.
type fakeSMTP struct {
	lis        net.Listener
	rejectAuth bool
	rcptReply  string

	mu   sync.Mutex
	data strings.Builder
}

func startFakeSMTP(t *testing.T, rejectAuth bool, rcptReply string) *fakeSMTP {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &fakeSMTP{lis: lis, rejectAuth: rejectAuth, rcptReply: rcptReply}
	t.Cleanup(func() { _ = lis.Close() })

	go func() {
		for {
			conn, err := lis.Accept()
			if err != nil {
				return
			}
			go s.handle(conn)
		}
	}()
	return s
}

func (s *fakeSMTP) hostPort(t *testing.T) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(s.lis.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port
}

func (s *fakeSMTP) received() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.String()
}

func (s *fakeSMTP) handle(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	write := func(line string) { _, _ = io.WriteString(conn, line+"\r\n") }

	write("220 fake ESMTP ready")
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.ToUpper(strings.TrimSpace(line))
		switch {
		case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
			write("250-fake")
			write("250 AUTH PLAIN LOGIN")
		case strings.HasPrefix(cmd, "AUTH"):
			if s.rejectAuth {
				write("535 5.7.8 authentication failed")
			} else {
				write("235 2.7.0 accepted")
			}
		case strings.HasPrefix(cmd, "MAIL"):
			write("250 sender ok")
		case strings.HasPrefix(cmd, "RCPT"):
			write(s.rcptReply)
		case strings.HasPrefix(cmd, "DATA"):
			write("354 end with <CRLF>.<CRLF>")
			for {
				bodyLine, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if strings.TrimRight(bodyLine, "\r\n") == "." {
					break
				}
				s.mu.Lock()
				s.data.WriteString(bodyLine)
				s.mu.Unlock()
			}
			write("250 queued")
		case strings.HasPrefix(cmd, "QUIT"):
			write("221 bye")
			return
		default:
			write("250 ok")
		}
	}
}

func testEmailConfig(t *testing.T, s *fakeSMTP) EmailConfig {
	t.Helper()
	host, port := s.hostPort(t)
	return EmailConfig{
		SMTPHost: host,
		SMTPPort: port,
		From:     "jobdone@example.com",
		To:       []string{"ops@example.com"},
	}
}

func TestEmailNotifier_SendsOverPlaintext(t *testing.T) {
	t.Parallel()

	srv := startFakeSMTP(t, false, "250 recipient ok")
	n := NewEmailNotifier(testEmailConfig(t, srv))

	res := n.Send(context.Background(), testPayload())

	require.True(t, res.Ok, "send failed: %s", res.Error)
	assert.Equal(t, "ops@example.com", res.Target)

	body := srv.received()
	assert.Contains(t, body, "Subject: Job Done")
	assert.Contains(t, body, "Job backup finished with exit code 0.")
	assert.Contains(t, body, "Job: backup")
}

func TestEmailNotifier_AuthFailureStillSends(t *testing.T) {
	t.Parallel()

	// Permissive relay policy: login is rejected but the send proceeds
	// and the server accepts the mail anyway.
	srv := startFakeSMTP(t, true, "250 recipient ok")
	cfg := testEmailConfig(t, srv)
	cfg.SMTPUser = "jobdone@example.com"
	cfg.SMTPPass = "hunter2"

	res := NewEmailNotifier(cfg).Send(context.Background(), testPayload())

	assert.True(t, res.Ok, "send failed: %s", res.Error)
}

func TestEmailNotifier_RejectionNeverLeaksPassword(t *testing.T) {
	t.Parallel()

	// The server's rejection text embeds the password literal; the
	// result error must come out scrubbed.
	srv := startFakeSMTP(t, false, "550 rejected, bad credentials hunter2")
	cfg := testEmailConfig(t, srv)
	cfg.SMTPUser = "jobdone@example.com"
	cfg.SMTPPass = "hunter2"

	res := NewEmailNotifier(cfg).Send(context.Background(), testPayload())

	assert.False(t, res.Ok)
	assert.NotEmpty(t, res.Error)
	assert.NotContains(t, res.Error, "hunter2")
}

func TestEmailNotifier_SubjectOverride(t *testing.T) {
	t.Parallel()

	srv := startFakeSMTP(t, false, "250 recipient ok")
	cfg := testEmailConfig(t, srv)
	cfg.Subject = "custom subject"

	res := NewEmailNotifier(cfg).Send(context.Background(), testPayload())

	require.True(t, res.Ok, "send failed: %s", res.Error)
	assert.Contains(t, srv.received(), "Subject: custom subject")
}

// startHangupListener accepts connections and hangs up without sending a
// byte, so a TLS handshake against it dies with EOF. The write side is
// half-closed and the read side drained, keeping the hangup a clean FIN
// rather than a reset.
func startHangupListener(t *testing.T) int {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = lis.Close() })

	go func() {
		for {
			conn, err := lis.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				if tc, ok := c.(*net.TCPConn); ok {
					_ = tc.CloseWrite()
				}
				_, _ = io.Copy(io.Discard, c)
				_ = c.Close()
			}(conn)
		}
	}()

	_, portStr, err := net.SplitHostPort(lis.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return port
}

func TestEmailNotifier_TLSFailureFallsBackToSubmissionPort(t *testing.T) {
	t.Parallel()

	// The implicit-TLS endpoint hangs up mid-handshake; the same attempt
	// must retry on the submission port and deliver the mail there.
	deadPort := startHangupListener(t)
	fallback := startFakeSMTP(t, false, "250 recipient ok")
	_, fallbackPort := fallback.hostPort(t)

	cfg := testEmailConfig(t, fallback)
	cfg.SMTPPort = deadPort

	n := NewEmailNotifier(cfg)
	n.tlsPort = deadPort
	n.fallbackPort = fallbackPort

	res := n.Send(context.Background(), testPayload())

	require.True(t, res.Ok, "send failed: %s", res.Error)
	assert.Contains(t, fallback.received(), "Job: backup")
}

func TestEmailNotifier_FallbackFailureReportsBothErrors(t *testing.T) {
	t.Parallel()

	// Both the implicit-TLS endpoint and the fallback hang up; the result
	// carries the primary error and the fallback error together.
	deadTLSPort := startHangupListener(t)
	deadPlainPort := startHangupListener(t)

	cfg := EmailConfig{
		SMTPHost: "127.0.0.1",
		SMTPPort: deadTLSPort,
		From:     "jobdone@example.com",
		To:       []string{"ops@example.com"},
	}

	n := NewEmailNotifier(cfg)
	n.tlsPort = deadTLSPort
	n.fallbackPort = deadPlainPort

	res := n.Send(context.Background(), testPayload())

	assert.False(t, res.Ok)
	assert.Contains(t, res.Error, "fallback on")
}

func TestEmailNotifier_ConnectErrorIsCaught(t *testing.T) {
	t.Parallel()

	// Nothing listens on this port.
	cfg := EmailConfig{
		SMTPHost: "127.0.0.1",
		SMTPPort: 1,
		From:     "jobdone@example.com",
		To:       []string{"ops@example.com"},
	}

	res := NewEmailNotifier(cfg).Send(context.Background(), testPayload())

	assert.False(t, res.Ok)
	assert.Contains(t, res.Error, "connect")
}

func TestIsConnectFailure(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err  error
		want bool
	}{
		"deadline exceeded": {err: context.DeadlineExceeded, want: true},
		"eof":               {err: io.EOF, want: true},
		"unexpected eof":    {err: io.ErrUnexpectedEOF, want: true},
		"wrapped eof":       {err: errors.Join(errors.New("connect"), io.EOF), want: true},
		"plain error":       {err: errors.New("550 rejected"), want: false},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, isConnectFailure(tt.err))
		})
	}
}

func TestEmailNotifier_BuildMessage(t *testing.T) {
	t.Parallel()

	cfg := EmailConfig{
		From: "jobdone@example.com",
		To:   []string{"a@example.com", "b@example.com"},
	}
	msg := string(NewEmailNotifier(cfg).buildMessage(testPayload()))

	assert.Contains(t, msg, "From: jobdone@example.com\r\n")
	assert.Contains(t, msg, "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, msg, "Subject: Job Done\r\n")
	assert.Contains(t, msg, "Status: success\r\n")
	assert.Contains(t, msg, "Exit code: 0\r\n")
}
