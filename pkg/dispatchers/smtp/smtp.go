package smtp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bdgeo/location-api/pkg/config"
	"github.com/bdgeo/location-api/pkg/email"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"
)

const dialTimeout = 15 * time.Second

// SMTP delivers mail through the configured relay.
type SMTP struct {
	cfg config.EmailConfig
}

// Init validates the SMTP configuration
func (s *SMTP) Init(c *config.Settings) error {
	s.cfg = c.Email

	if s.cfg.Host == "" {
		return fmt.Errorf("smtp requires EMAIL_HOST to be set")
	}
	return nil
}

// Send delivers m, dialing a new connection per call.
func (s *SMTP) Send(ctx context.Context, m email.Message) error {
	msg, err := m.Build(s.cfg.Sender())
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.cfg.Host, s.options()...)
	if err != nil {
		return errors.Wrap(err, "creating smtp client")
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		logrus.Error(err)
		return errors.Wrapf(err, "sending mail via %s:%d", s.cfg.Host, s.cfg.Port)
	}

	logrus.Printf("Message successfully sent to %s at %s ", strings.Join(m.To, ", "), time.Now())
	return nil
}

func (s *SMTP) options() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTimeout(dialTimeout),
	}
	if s.cfg.UseTLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	if s.cfg.User != "" {
		auth := mail.SMTPAuthPlain
		if !s.cfg.UseTLS {
			auth = mail.SMTPAuthPlainNoEnc
		}
		opts = append(opts,
			mail.WithSMTPAuth(auth),
			mail.WithUsername(s.cfg.User),
			mail.WithPassword(s.cfg.Password),
		)
	}
	return opts
}
