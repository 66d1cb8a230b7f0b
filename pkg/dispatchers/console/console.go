package console

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/bdgeo/location-api/pkg/config"
	"github.com/bdgeo/location-api/pkg/email"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var separator = strings.Repeat("-", 79)

// Console writes every message to a stream instead of sending it.
type Console struct {
	// Out defaults to stdout.
	Out io.Writer

	mu   sync.Mutex
	from string
}

// Init prepares the console dispatcher
func (c *Console) Init(s *config.Settings) error {
	if c.Out == nil {
		c.Out = os.Stdout
	}
	c.from = s.Email.Sender()
	return nil
}

// Send renders m followed by a separator line.
func (c *Console) Send(ctx context.Context, m email.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := m.Build(c.from)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := msg.WriteTo(c.Out); err != nil {
		return errors.Wrap(err, "writing message")
	}
	if _, err := io.WriteString(c.Out, "\n"+separator+"\n"); err != nil {
		return errors.Wrap(err, "writing message")
	}
	logrus.Debugf("Message to %s written to console", strings.Join(m.To, ", "))
	return nil
}
