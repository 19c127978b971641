package mail

import (
	"context"
	"fmt"

	"github.com/dajohi/goemail"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	sc "github.com/dmitrijs2005/taskkeeper/internal/server/config"
)

// client provides an SMTP client for sending emails from a preset address.
//
// client implements the Mailer interface.
type client struct {
	smtp        *goemail.SMTP // SMTP server
	mailName    string        // From name
	mailAddress string        // From email address
	logger      logging.Logger
	disabled    bool
}

// NewClient builds a Mailer from the SMTP settings in cfg. An empty SMTPHost
// yields a disabled client whose send methods do nothing.
func NewClient(cfg *sc.Config, logger logging.Logger) (Mailer, error) {
	c := &client{
		mailName:    cfg.MailFromName,
		mailAddress: cfg.MailFromAddress,
		logger:      logger.With("module", "mail"),
	}

	if cfg.SMTPHost == "" {
		c.disabled = true
		return c, nil
	}

	smtp, err := goemail.NewSMTP(cfg.SMTPHost, nil)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	c.smtp = smtp

	return c, nil
}

// IsEnabled returns whether the mail server is enabled.
//
// This function satisfies the Mailer interface.
func (c *client) IsEnabled() bool {
	return !c.disabled
}

// send delivers one message on its own goroutine. The request that triggered
// the notification never observes the outcome.
func (c *client) send(ctx context.Context, to, subject, body string) {
	if c.disabled {
		return
	}

	msg := goemail.NewMessage(c.mailAddress, subject, body)
	msg.SetName(c.mailName)
	msg.AddTo(to)

	go func() {
		if err := c.smtp.Send(msg); err != nil {
			c.logger.Error(ctx, "sending mail", "to", to, "subject", subject, "error", err.Error())
		}
	}()
}

// SendWelcome greets a freshly registered user.
//
// This function satisfies the Mailer interface.
func (c *client) SendWelcome(ctx context.Context, email, name string) {
	body := fmt.Sprintf("Welcome to the app, %s. Let me know how you get along with the app.", name)
	c.send(ctx, email, "Thanks for joining us!", body)
}

// SendCancellation notifies a user whose account was deleted.
//
// This function satisfies the Mailer interface.
func (c *client) SendCancellation(ctx context.Context, email, name string) {
	body := fmt.Sprintf("Thanks for using the application, %s. Could we have done something for you to stay onboard?", name)
	c.send(ctx, email, "Sorry to see you go", body)
}
