package notify

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

// implicitTLSPort gets a TLS handshake from the first byte; submissionPort
// is the STARTTLS fallback when a 465 connection cannot be established.
const (
	implicitTLSPort = 465
	submissionPort  = 587
)

// EmailNotifier delivers the payload over SMTP, opening one connection per
// attempt.
//
// Transport selection: port 465 uses implicit TLS from connection start; any
// other port connects in plaintext and upgrades via STARTTLS when the server
// advertises it. If the 465 connection times out, the same attempt retries
// on 587 with STARTTLS before giving up.
//
// Authentication is deliberately best-effort: when login fails the notifier
// still attempts the send rather than aborting, because relays that trust
// the sender may accept unauthenticated mail. Relays that do enforce auth
// reject at MAIL/RCPT/DATA and that rejection becomes the attempt's error.
type EmailNotifier struct {
	config EmailConfig

	// tlsPort marks which port gets implicit TLS; fallbackPort is where
	// the STARTTLS fallback connects. Fields so tests can stand in local
	// listeners for the fixed 465/587 pair.
	tlsPort      int
	fallbackPort int
}

// NewEmailNotifier creates an email notifier for the given config.
func NewEmailNotifier(config EmailConfig) *EmailNotifier {
	return &EmailNotifier{
		config:       config,
		tlsPort:      implicitTLSPort,
		fallbackPort: submissionPort,
	}
}

// Name returns the channel name
func (e *EmailNotifier) Name() string { return string(KindEmail) }

// Send runs one SMTP dialog delivering the payload to all recipients.
func (e *EmailNotifier) Send(ctx context.Context, p Payload) SendResult {
	target := strings.Join(e.config.To, ",")
	msg := e.buildMessage(p)

	err := e.deliver(ctx, e.config.SMTPPort, msg)
	if err != nil && e.config.SMTPPort == e.tlsPort && isConnectFailure(err) {
		if fbErr := e.deliver(ctx, e.fallbackPort, msg); fbErr != nil {
			err = fmt.Errorf("%v | fallback on %d failed: %v", err, e.fallbackPort, fbErr)
		} else {
			err = nil
		}
	}

	if err != nil {
		return SendResult{
			Channel: e.Name(),
			Target:  target,
			Error:   Scrub(err.Error(), e.config.SMTPPass),
		}
	}
	return SendResult{Channel: e.Name(), Target: target, Ok: true}
}

// deliver performs the full SMTP dialog on the given port.
func (e *EmailNotifier) deliver(ctx context.Context, port int, msg []byte) error {
	host := e.config.SMTPHost
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	conn, err := e.dial(ctx, addr, port == e.tlsPort)
	if err != nil {
		return fmt.Errorf("connect %s: %w", addr, err)
	}
	defer conn.Close()

	// Bound the whole dialog, not just the dial, by the attempt deadline.
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	encrypted := port == e.tlsPort
	if !encrypted {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
			encrypted = true
		}
	}

	// Default to the sender address as username when none is configured.
	user := e.config.SMTPUser
	if user == "" {
		user = e.config.From
	}
	if user != "" && e.config.SMTPPass != "" && canAuth(host, encrypted) {
		if ok, _ := client.Extension("AUTH"); ok {
			// Best-effort policy: a failed login does not abort the send.
			bestEffortAuth(client, user, e.config.SMTPPass)
		}
	}

	if err := client.Mail(e.config.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range e.config.To {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt %s: %w", rcpt, err)
		}
	}
	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := wc.Write(msg); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}
	return client.Quit()
}

// dial opens the transport connection, with implicit TLS when requested.
func (e *EmailNotifier) dial(ctx context.Context, addr string, implicit bool) (net.Conn, error) {
	dialer := &net.Dialer{}
	if implicit {
		tlsDialer := &tls.Dialer{
			NetDialer: dialer,
			Config:    &tls.Config{ServerName: e.config.SMTPHost},
		}
		return tlsDialer.DialContext(ctx, "tcp", addr)
	}
	return dialer.DialContext(ctx, "tcp", addr)
}

// buildMessage renders the RFC 5322 message: subject defaults to the
// notification title, body is the message text followed by the job context.
func (e *EmailNotifier) buildMessage(p Payload) []byte {
	subject := e.config.Subject
	if subject == "" {
		subject = p.Title
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", e.config.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(e.config.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "%s\r\n\r\n", p.Message)
	fmt.Fprintf(&b, "Job: %s\r\n", p.Context.Job)
	fmt.Fprintf(&b, "Status: %s\r\n", p.Context.Status)
	fmt.Fprintf(&b, "Exit code: %d\r\n", p.Context.ExitCode)
	fmt.Fprintf(&b, "Host: %s\r\n", p.Context.Host)
	fmt.Fprintf(&b, "User: %s\r\n", p.Context.User)
	fmt.Fprintf(&b, "Time: %s\r\n", p.Context.Timestamp)
	return []byte(b.String())
}

// bestEffortAuth issues AUTH PLAIN directly on the text connection and
// discards the server's verdict. smtp.Client.Auth cannot be used here: it
// quits the session when the server rejects the credentials, and the
// permissive-relay policy needs the connection to stay open for the send.
func bestEffortAuth(client *smtp.Client, user, pass string) {
	resp := base64.StdEncoding.EncodeToString([]byte("\x00" + user + "\x00" + pass))
	id, err := client.Text.Cmd("AUTH PLAIN %s", resp)
	if err != nil {
		return
	}
	client.Text.StartResponse(id)
	defer client.Text.EndResponse(id)
	_, _, _ = client.Text.ReadResponse(235)
}

// canAuth mirrors net/smtp's PLAIN rule: credentials only travel over an
// encrypted link or to the local host. Skipping auth instead of letting the
// client refuse keeps the connection alive for the best-effort send.
func canAuth(host string, encrypted bool) bool {
	return encrypted || host == "localhost" || host == "127.0.0.1" || host == "::1"
}

// isConnectFailure reports whether err looks like the TLS endpoint never
// completed a usable connection (timed out, or hung up before or during the
// handshake), which is when the STARTTLS fallback applies.
func isConnectFailure(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
