package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/mail-sentinel/internal/core"
	"go.uber.org/zap"
)

// SMTPGateway is an SMTP content filter: it accepts mail from the MTA, runs
// the autonomy pipeline, and either relays the stamped message downstream,
// reroutes it to the hold address for human review, or rejects it outright.
type SMTPGateway struct {
	service          *core.SentinelService
	audit            core.AuditRepository
	logger           *zap.Logger
	listenAddr       string
	server           *smtp.Server
	actionHeader     string
	confidenceHeader string
	rulesHeader      string
	holdAddress      string
	downstreamAddr   string
	downstreamPort   int
	downstreamOn     bool
}

// NewSMTPGateway creates a new SMTP gateway
func NewSMTPGateway(
	service *core.SentinelService,
	audit core.AuditRepository,
	logger *zap.Logger,
	listenAddr string,
	actionHeader string,
	confidenceHeader string,
	rulesHeader string,
	holdAddress string,
	downstreamAddr string,
	downstreamPort int,
	downstreamOn bool,
) *SMTPGateway {
	return &SMTPGateway{
		service:          service,
		audit:            audit,
		logger:           logger,
		listenAddr:       listenAddr,
		actionHeader:     actionHeader,
		confidenceHeader: confidenceHeader,
		rulesHeader:      rulesHeader,
		holdAddress:      holdAddress,
		downstreamAddr:   downstreamAddr,
		downstreamPort:   downstreamPort,
		downstreamOn:     downstreamOn,
	}
}

// Start starts the SMTP gateway
func (g *SMTPGateway) Start() error {
	g.server = smtp.NewServer(&smtpBackend{gateway: g})

	g.server.Addr = g.listenAddr
	g.server.Domain = "localhost"
	g.server.ReadTimeout = 30 * time.Second
	g.server.WriteTimeout = 30 * time.Second
	g.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	g.server.MaxRecipients = 50
	g.server.AllowInsecureAuth = true

	g.logger.Info("SMTP gateway starting", zap.String("address", g.listenAddr))

	go func() {
		if err := g.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				g.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP gateway
func (g *SMTPGateway) Stop() error {
	if g.server != nil {
		return g.server.Close()
	}
	return nil
}

// ProcessEmail evaluates an email without the SMTP plumbing, used for
// direct calls and testing.
func (g *SMTPGateway) ProcessEmail(ctx context.Context, email *core.Email) (core.DecisionResult, error) {
	return g.service.Evaluate(ctx, email), nil
}

// recordDecision writes the decision to the audit trail on behalf of the
// caller; the pipeline itself keeps no state.
func (g *SMTPGateway) recordDecision(ctx context.Context, email *core.Email, decision core.DecisionResult) {
	if g.audit == nil {
		return
	}

	entry := &core.AuditEntry{
		Sender:         email.From,
		Subject:        email.Subject,
		Action:         decision.Action,
		Confidence:     decision.Confidence,
		TriggeredRules: decision.TriggeredRules,
		DecidedAt:      decision.DecidedAt,
	}
	if err := g.audit.Record(ctx, entry); err != nil {
		g.logger.Error("Failed to record audit entry", zap.Error(err))
	}
}

// relayDownstream hands the processed email to the downstream MTA
func (g *SMTPGateway) relayDownstream(sender string, recipients []string, emailData []byte) error {
	downstreamAddr := fmt.Sprintf("%s:%d", g.downstreamAddr, g.downstreamPort)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", downstreamAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to downstream MTA: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			g.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			recipientOK = true
		}
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(emailData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		g.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

// stampHeaders prepends the decision headers to the raw message
func (g *SMTPGateway) stampHeaders(rawData []byte, decision core.DecisionResult) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s: %s\r\n", g.actionHeader, decision.Action)
	fmt.Fprintf(&buf, "%s: %.2f\r\n", g.confidenceHeader, decision.Confidence)
	if len(decision.TriggeredRules) > 0 {
		fmt.Fprintf(&buf, "%s: %s\r\n", g.rulesHeader, strings.Join(decision.TriggeredRules, ", "))
	}
	buf.Write(rawData)

	return buf.Bytes()
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	gateway *SMTPGateway
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		gateway:    b.gateway,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	gateway    *SMTPGateway
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for the gateway)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data evaluates the message and acts on the decision
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.gateway.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	msg, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		s.gateway.logger.Error("Failed to parse email message", zap.Error(err))
		return err
	}

	textContent, err := extractTextFromMessage(msg)
	if err != nil {
		s.gateway.logger.Error("Failed to extract text content", zap.Error(err))
		return err
	}

	email := &core.Email{
		Headers: make(map[string][]string),
		Body:    textContent,
		From:    s.sender,
		To:      s.recipients,
	}
	for key, values := range msg.Header {
		email.Headers[key] = values
		if strings.EqualFold(key, "Subject") && len(values) > 0 {
			email.Subject = values[0]
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	decision := s.gateway.service.Evaluate(ctx, email)
	s.gateway.recordDecision(ctx, email, decision)

	switch decision.Action {
	case core.ActionBlock:
		s.gateway.logger.Info("Blocking email",
			zap.String("from", email.From),
			zap.Float64("confidence", decision.Confidence),
			zap.String("rationale", decision.Rationale))
		return fmt.Errorf("550 Message blocked by autonomy policy (confidence: %.1f)", decision.Confidence)

	case core.ActionEscalateHuman:
		// Reroute to the hold address so a human picks it up
		recipients := s.recipients
		if s.gateway.holdAddress != "" {
			recipients = []string{s.gateway.holdAddress}
		}
		s.gateway.logger.Info("Escalating email for human review",
			zap.String("from", email.From),
			zap.Strings("hold_recipients", recipients),
			zap.String("rationale", decision.Rationale))
		return s.deliver(recipients, rawData, decision)

	default:
		s.gateway.logger.Info("Releasing email for automatic handling",
			zap.String("from", email.From))
		return s.deliver(s.recipients, rawData, decision)
	}
}

// deliver stamps the decision headers and relays downstream when enabled
func (s *smtpSession) deliver(recipients []string, rawData []byte, decision core.DecisionResult) error {
	if !s.gateway.downstreamOn {
		return nil
	}

	stamped := s.gateway.stampHeaders(rawData, decision)
	if err := s.gateway.relayDownstream(s.sender, recipients, stamped); err != nil {
		s.gateway.logger.Error("Failed to relay email downstream", zap.Error(err))
		return fmt.Errorf("451 Temporary failure relaying message")
	}
	return nil
}

// Logout handles session termination
func (s *smtpSession) Logout() error {
	return nil
}
