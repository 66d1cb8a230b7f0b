package dispatchers

import (
	"context"

	"github.com/bdgeo/location-api/pkg/config"
	"github.com/bdgeo/location-api/pkg/dispatchers/console"
	"github.com/bdgeo/location-api/pkg/dispatchers/smtp"
	"github.com/bdgeo/location-api/pkg/email"
)

// Dispatcher delivers outgoing e-mail.
type Dispatcher interface {
	Init(s *config.Settings) error
	Send(ctx context.Context, m email.Message) error
}

// Map associates backend names with constructors for their dispatcher
var Map = map[string]func() Dispatcher{
	config.EmailBackendConsole: func() Dispatcher { return &console.Console{} },
	config.EmailBackendSMTP:    func() Dispatcher { return &smtp.SMTP{} },
}
