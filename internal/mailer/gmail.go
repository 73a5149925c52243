package mailer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	goption "google.golang.org/api/option"

	"nadgodziny/internal/config"
	"nadgodziny/internal/log"
)

// GmailMailer sends mail through the Gmail API as the authorized user.
type GmailMailer struct {
	svc    *gmail.Service
	logger *log.Logger
}

var _ Mailer = (*GmailMailer)(nil)

// NewGmail builds a Gmail mailer from the OAuth client and token
// material in the configuration. Returns ErrMailUnavailable when no
// client credentials are configured.
func NewGmail(ctx context.Context, cfg *config.Config, logger *log.Logger) (*GmailMailer, error) {
	if !cfg.MailConfigured() {
		return nil, ErrMailUnavailable
	}

	clientJSON, err := readMaterial(cfg.GmailOAuthClientJSON, cfg.GmailOAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("read OAuth client: %w", err)
	}
	tokenJSON, err := readMaterial(cfg.GmailOAuthTokenJSON, cfg.GmailOAuthTokenFile)
	if err != nil {
		return nil, fmt.Errorf("read OAuth token: %w", err)
	}

	oauthCfg, err := google.ConfigFromJSON(clientJSON, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("parse OAuth client: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("parse OAuth token: %w", err)
	}

	svc, err := gmail.NewService(ctx,
		goption.WithTokenSource(oauthCfg.TokenSource(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}

	return &GmailMailer{
		svc:    svc,
		logger: logger.WithComponent(log.ComponentMailer),
	}, nil
}

// Send delivers msg as the authorized user ("me" in Gmail API terms).
func (m *GmailMailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("empty recipient")
	}

	raw := base64.URLEncoding.EncodeToString(buildRFC2822(msg))
	_, err := m.svc.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	m.logger.InfoContext(ctx, "Mail sent",
		log.FieldRecipient, msg.To,
		"subject", msg.Subject,
		log.FieldOperation, log.OpSend)
	return nil
}

// buildRFC2822 renders the message headers and body. The subject is
// MIME-encoded because report subjects carry Polish diacritics.
func buildRFC2822(msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

// readMaterial prefers inline JSON over a file path.
func readMaterial(inline, file string) ([]byte, error) {
	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		return os.ReadFile(file)
	default:
		return nil, errors.New("no credentials provided")
	}
}
