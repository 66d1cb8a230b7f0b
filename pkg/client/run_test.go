package client

import (
	"testing"

	"github.com/bdgeo/location-api/pkg/config"
	"github.com/bdgeo/location-api/pkg/dispatchers/console"
	"github.com/bdgeo/location-api/pkg/dispatchers/smtp"
)

func TestParseMailer(t *testing.T) {
	mailer, err := ParseMailer(&config.Settings{Email: config.EmailConfig{Backend: config.EmailBackendConsole}})
	if err != nil {
		t.Fatalf("ParseMailer(console) error: %v", err)
	}
	if _, ok := mailer.(*console.Console); !ok {
		t.Errorf("ParseMailer(console) = %T", mailer)
	}

	mailer, err = ParseMailer(&config.Settings{Email: config.EmailConfig{Backend: config.EmailBackendSMTP, Host: "smtp.example.com", Port: 587}})
	if err != nil {
		t.Fatalf("ParseMailer(smtp) error: %v", err)
	}
	if _, ok := mailer.(*smtp.SMTP); !ok {
		t.Errorf("ParseMailer(smtp) = %T", mailer)
	}
}

func TestParseMailer_Errors(t *testing.T) {
	if _, err := ParseMailer(&config.Settings{Email: config.EmailConfig{Backend: "pigeon"}}); err == nil {
		t.Error("unknown backend should fail")
	}
	if _, err := ParseMailer(&config.Settings{Email: config.EmailConfig{Backend: config.EmailBackendSMTP}}); err == nil {
		t.Error("smtp without host should fail")
	}
}
