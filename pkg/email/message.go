package email

import (
	"github.com/pkg/errors"
	"github.com/wneessen/go-mail"
)

// Message is an outgoing plain text e-mail.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Build renders the message, using defaultFrom when it has no sender.
func (m Message) Build(defaultFrom string) (*mail.Msg, error) {
	if len(m.To) == 0 {
		return nil, errors.New("message has no recipients")
	}

	from := m.From
	if from == "" {
		from = defaultFrom
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, errors.Wrapf(err, "invalid sender %q", from)
	}
	if err := msg.To(m.To...); err != nil {
		return nil, errors.Wrap(err, "invalid recipient")
	}
	msg.Subject(m.Subject)
	msg.SetDate()
	msg.SetMessageID()
	msg.SetBodyString(mail.TypeTextPlain, m.Body)
	return msg, nil
}
