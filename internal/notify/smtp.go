package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-scout/internal/config"
	"github.com/yourusername/stock-scout/internal/models"
)

// SMTPNotifier sends plain-text email alerts.
type SMTPNotifier struct {
	cfg    config.NotifyConfig
	logger *logrus.Logger

	// send is swapped out in tests
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPNotifier builds an email notifier from the notify config.
func NewSMTPNotifier(cfg config.NotifyConfig, logger *logrus.Logger) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, logger: logger, send: smtp.SendMail}
}

func (s *SMTPNotifier) NotifyMemoCreated(ctx context.Context, memo *models.InvestmentMemo) error {
	body := fmt.Sprintf(
		"New investment memo awaiting review.\n\nTicker: %s\nAnalyst: %s\nSignal: %s\nConviction: %.0f%%\nCurrent price: %.2f\nTarget price: %.2f\n\nThesis:\n%s\n",
		memo.Ticker, memo.Analyst, memo.Signal, memo.Conviction,
		memo.CurrentPrice, memo.TargetPrice, memo.Thesis,
	)
	return s.sendMail(memoSubject(memo), body)
}

func (s *SMTPNotifier) NotifyScanCompleted(ctx context.Context, summary models.ScanSummary) error {
	var b strings.Builder
	fmt.Fprintf(&b,
		"Scan %s finished with status %s.\n\nTickers scanned: %d\nMemos generated: %d\nErrors: %d\n",
		summary.ScanID, summary.Status, summary.TickersScanned,
		summary.MemosGenerated, len(summary.Errors),
	)

	if len(summary.Memos) > 0 {
		b.WriteString("\nHigh-conviction memos:\n")
		for _, memo := range summary.Memos {
			fmt.Fprintf(&b, "  %s [%s] %s %.0f%% conviction, target %.2f\n",
				memo.Ticker, memo.Analyst, memo.Signal, memo.Conviction, memo.TargetPrice)
		}
	}

	return s.sendMail(scanSubject(summary), b.String())
}

func (s *SMTPNotifier) sendMail(subject, body string) error {
	if len(s.cfg.ToAddrs) == 0 {
		return fmt.Errorf("no recipient addresses configured")
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.cfg.FromAddr, strings.Join(s.cfg.ToAddrs, ", "), subject, body)

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	}

	if err := s.send(addr, auth, s.cfg.FromAddr, s.cfg.ToAddrs, []byte(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	s.logger.WithField("subject", subject).Debug("Email notification sent")
	return nil
}

// FromConfig assembles the configured notifier chain. Returns Nop when
// notifications are disabled or nothing is configured.
func FromConfig(cfg config.NotifyConfig, logger *logrus.Logger) Notifier {
	if !cfg.Enabled {
		return Nop{}
	}

	var notifiers []Notifier
	if cfg.WebhookURL != "" {
		notifiers = append(notifiers, NewWebhookNotifier(cfg.WebhookURL, logger))
	}
	if cfg.SMTPHost != "" {
		notifiers = append(notifiers, NewSMTPNotifier(cfg, logger))
	}

	switch len(notifiers) {
	case 0:
		return Nop{}
	case 1:
		return notifiers[0]
	default:
		return NewMulti(logger, notifiers...)
	}
}
