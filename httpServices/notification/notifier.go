package notification

import (
	"fmt"

	"clinic-portal/logger"
	"clinic-portal/models/consent"
)

// Service fans a consent code out to the requested delivery channels.
// Delivery is best-effort by design: a failed send is logged and reported,
// but issuance never rolls back because of it.
type Service struct {
	sms    *SMSService
	mailer *Mailer
}

// NewService wires up whichever channels are configured. A nil channel is
// tolerated; sends over it fail and get logged.
func NewService() *Service {
	svc := &Service{}

	sms, err := NewSMSService()
	if err != nil {
		logger.Warning("SMS channel not configured: " + err.Error())
	} else {
		svc.sms = sms
	}

	mailer, err := NewMailer()
	if err != nil {
		logger.Warning("Email channel not configured: " + err.Error())
	} else {
		svc.mailer = mailer
	}

	return svc
}

// SendConsentCode delivers the code to the patient over the chosen method.
// The in_person and phone_call methods have no automated delivery; a staff
// member relays the code, so those only log that issuance happened.
func (s *Service) SendConsentCode(method consent.DeliveryMethod, phone, email, code, customMessage string) error {
	switch method {
	case consent.MethodSMS:
		return s.sendSMS(phone, code, customMessage)
	case consent.MethodEmail:
		return s.sendEmail(email, code, customMessage)
	case consent.MethodSMSEmail:
		smsErr := s.sendSMS(phone, code, customMessage)
		mailErr := s.sendEmail(email, code, customMessage)
		if smsErr != nil {
			return smsErr
		}
		return mailErr
	case consent.MethodInPerson, consent.MethodPhoneCall:
		logger.Info(fmt.Sprintf("Consent code issued for manual delivery (%s)", method))
		return nil
	default:
		return fmt.Errorf("unknown delivery method: %s", method)
	}
}

func (s *Service) sendSMS(phone, code, customMessage string) error {
	if s.sms == nil {
		return fmt.Errorf("SMS channel not configured")
	}
	if phone == "" {
		return fmt.Errorf("patient has no phone number on file")
	}

	body := fmt.Sprintf("Your clinic access consent code is %s. It expires in 10 minutes.", code)
	if customMessage != "" {
		body += " " + customMessage
	}
	return s.sms.SendSMS(phone, body)
}

func (s *Service) sendEmail(email, code, customMessage string) error {
	if s.mailer == nil {
		return fmt.Errorf("email channel not configured")
	}
	if email == "" {
		return fmt.Errorf("patient has no email address on file")
	}

	body := fmt.Sprintf("Your clinic access consent code is %s.\nIt expires in 10 minutes.", code)
	if customMessage != "" {
		body += "\n\n" + customMessage
	}
	return s.mailer.SendMail(email, "Your consent verification code", body)
}
