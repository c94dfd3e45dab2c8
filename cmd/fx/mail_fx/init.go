package mail_fx

import (
	"log"
	"os"
	"strconv"

	"go.uber.org/fx"

	"cognipdf/internal/api/controllers"
	"cognipdf/internal/services"
)

var Module = fx.Provide(provideMailService, provideContactController)

func provideMailService() services.MailServiceInterface {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587 // STARTTLS default; use 465 with SMTP_USE_SSL=true for SMTPS
	}

	cfg := services.SMTPConfig{
		Host:       os.Getenv("SMTP_HOST"),
		Port:       port,
		Username:   os.Getenv("SMTP_USERNAME"),
		Password:   os.Getenv("SMTP_PASSWORD"), // use app password if 2FA is enabled
		From:       os.Getenv("SMTP_FROM"),
		FromName:   "CogniPDF",
		UseSSL:     os.Getenv("SMTP_USE_SSL") == "true",
		RequireTLS: true,

		AppName:   "CogniPDF",
		ContactTo: os.Getenv("CONTACT_INBOX"),
	}

	mailService, err := services.NewSMTPMailService(cfg)
	if err != nil {
		log.Printf("Failed to initialize SMTP mail service: %v", err)
	}

	return mailService
}

func provideContactController(mailService services.MailServiceInterface) *controllers.ContactController {
	return controllers.NewContactController(mailService)
}
