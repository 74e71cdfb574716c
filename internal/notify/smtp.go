package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/jmehdipour/contact-gateway/internal/config"
	"github.com/jmehdipour/contact-gateway/internal/model"
	"go.uber.org/zap"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier mails the missing-phone list as plain text. smtp.SendMail
// upgrades to STARTTLS when the server offers it.
type SMTPNotifier struct {
	cfg  config.SMTPConfig
	log  *zap.Logger
	send sendFunc
}

func NewSMTPNotifier(cfg config.SMTPConfig, log *zap.Logger) *SMTPNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &SMTPNotifier{cfg: cfg, log: log, send: smtp.SendMail}
}

func (n *SMTPNotifier) Notify(ctx context.Context, ev model.MissingContactsEvent) error {
	if len(ev.Names) == 0 {
		return ErrNothingToSend
	}
	if n.cfg.Host == "" || n.cfg.From == "" || n.cfg.To == "" {
		return fmt.Errorf("smtp: host, from and to must be configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	if err := n.send(addr, auth, n.cfg.From, []string{n.cfg.To}, BuildMessage(n.cfg.From, n.cfg.To, ev.Names)); err != nil {
		n.log.Error("missing contacts mail failed",
			zap.String("run_id", ev.RunID),
			zap.String("smtp_addr", addr),
			zap.Error(err),
		)
		return fmt.Errorf("smtp send: %w", err)
	}

	n.log.Info("missing contacts mail sent",
		zap.String("run_id", ev.RunID),
		zap.String("to", n.cfg.To),
		zap.Int("names", len(ev.Names)),
	)
	return nil
}

// Body is the plain-text mail body listing names one per line.
func Body(names []string) string {
	var sb strings.Builder
	sb.WriteString("The following contacts are missing phone numbers:\n\n")
	for _, name := range names {
		sb.WriteString("- " + name + "\n")
	}
	sb.WriteString("\nPlease provide phone numbers for these contacts.")
	return sb.String()
}

// BuildMessage returns the RFC 5322 message (headers + CRLF body).
func BuildMessage(from, to string, names []string) []byte {
	var sb strings.Builder
	sb.WriteString("From: " + from + "\r\n")
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + Subject + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(strings.ReplaceAll(Body(names), "\n", "\r\n"))
	return []byte(sb.String())
}
