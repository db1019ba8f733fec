package service

import (
	"fmt"

	"toolbox/web-api/config"
	"toolbox/web-api/model"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type mailTemplate struct {
	subject string
	html    string
	plain   string
}

var mailTemplates = map[string]mailTemplate{
	model.PurposeVerification: {
		subject: "Verify your email address",
		html:    "<p>Your verification code is:</p><h2>%v</h2><p>It expires in %v minutes. If you didn't register, ignore this mail.</p>",
		plain:   "Your verification code is %v. It expires in %v minutes. If you didn't register, ignore this mail.",
	},
	model.PurposePasswordReset: {
		subject: "Reset your password",
		html:    "<p>Your password reset code is:</p><h2>%v</h2><p>It expires in %v minutes. If you didn't request a reset, ignore this mail.</p>",
		plain:   "Your password reset code is %v. It expires in %v minutes. If you didn't request a reset, ignore this mail.",
	},
}

// Mailer delivers transactional mail. Every failure is reported as a
// boolean so callers degrade to a user message instead of crashing
// the request.
type Mailer struct {
	cfg *config.Config
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{cfg: cfg}
}

// SendOTP renders the purpose specific message with the code
// interpolated and hands it to the SMTP transport
func (m *Mailer) SendOTP(sendTo, code, purpose string) bool {
	if !m.cfg.Mail.Enabled {
		zap.L().Warn("Mail delivery disabled, passcode not sent", zap.String("purpose", purpose))
		return false
	}

	if sendTo == m.cfg.Mail.Sender {
		zap.L().Error("Refusing to mail the sender address itself")
		return false
	}

	tpl, ok := mailTemplates[purpose]
	if !ok {
		zap.L().Error("No mail template for purpose", zap.String("purpose", purpose))
		return false
	}

	minutes := int(m.cfg.OTP.Validity.Minutes())

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.Mail.Sender)
	msg.SetHeader("To", sendTo)
	msg.SetHeader("Subject", tpl.subject)
	msg.SetBody("text/plain", fmt.Sprintf(tpl.plain, code, minutes))
	msg.AddAlternative("text/html", fmt.Sprintf(tpl.html, code, minutes))

	d := gomail.NewDialer(m.cfg.Mail.Host, m.cfg.Mail.Port, m.cfg.Mail.Sender, m.cfg.Mail.Password)

	if err := d.DialAndSend(msg); err != nil {
		zap.L().Error("Failed to send mail", zap.Error(err), zap.String("purpose", purpose))
		return false
	}

	return true
}
