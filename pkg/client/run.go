package client

import (
	"fmt"

	"github.com/bdgeo/location-api/pkg/config"
	"github.com/bdgeo/location-api/pkg/dispatchers"
	"github.com/sirupsen/logrus"
)

// ParseMailer returns the initialised dispatcher for the configured
// e-mail backend.
func ParseMailer(s *config.Settings) (dispatchers.Dispatcher, error) {
	newDispatcher, ok := dispatchers.Map[s.Email.Backend]
	if !ok {
		return nil, fmt.Errorf("unknown email backend %q", s.Email.Backend)
	}

	mailer := newDispatcher()
	if err := mailer.Init(s); err != nil {
		return nil, err
	}
	logrus.Debugf("Using %s email backend", s.Email.Backend)
	return mailer, nil
}
