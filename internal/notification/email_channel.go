package notification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"text/template"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/email"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/profileservice"
)

const emailChannelName = "email"

var subjects = map[domain.NotificationAction]string{
	domain.ActionNew:       "Your appointment is booked",
	domain.ActionUpdated:   "Your appointment has been updated",
	domain.ActionCancelled: "Your appointment has been cancelled",
}

var textTemplate = template.Must(template.New("text").Parse(`Dear {{.ClientName}},

{{if eq .Action "cancelled"}}your appointment for {{.Service}} on {{.Date}} at {{.Time}} has been cancelled.
{{- else if eq .Action "updated"}}your appointment for {{.Service}} has been moved to {{.Date}} at {{.Time}}.
{{- else}}your appointment for {{.Service}} is booked for {{.Date}} at {{.Time}}.
{{- end}}

If you have questions or need to change your appointment, please contact us.

{{.Salon}}
`))

var htmlTemplate = htmltemplate.Must(htmltemplate.New("html").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #333;">{{.Subject}}</h1>
  <p>Dear {{.ClientName}},</p>
  <p>{{if eq .Action "cancelled"}}your appointment for {{.Service}} on {{.Date}} at {{.Time}} has been cancelled.{{else if eq .Action "updated"}}your appointment for {{.Service}} has been moved to {{.Date}} at {{.Time}}.{{else}}your appointment for {{.Service}} is booked for {{.Date}} at {{.Time}}.{{end}}</p>
  <p>If you have questions or need to change your appointment, please contact us.</p>
  <p style="color: #888;">{{.Salon}}</p>
</div>
`))

type emailData struct {
	Action     string
	Subject    string
	ClientName string
	Service    string
	Date       string
	Time       string
	Salon      string
}

// EmailChannel письмо клиенту на адрес из его профиля
type EmailChannel struct {
	profiles ProfileLookup
	sender   email.Sender
	salon    string
	logger   Logger
}

// NewEmailChannel salon - подпись в письме
func NewEmailChannel(profiles ProfileLookup, sender email.Sender, salon string, logger Logger) *EmailChannel {
	return &EmailChannel{
		profiles: profiles,
		sender:   sender,
		salon:    salon,
		logger:   logger,
	}
}

func (c *EmailChannel) Name() string {
	return emailChannelName
}

// Deliver клиент без профиля или без email пропускается без ошибки
func (c *EmailChannel) Deliver(ctx context.Context, ev Event) error {
	profile, err := c.profiles.GetProfile(ctx, ev.Appointment.ClientID)
	if err != nil {
		if errors.Is(err, profileservice.ErrProfileNotFound) {
			c.logger.Info("EmailChannel: no profile for client %s, skipping", ev.Appointment.ClientID)
			return nil
		}
		return fmt.Errorf("get profile: %w", err)
	}
	if profile.Email == "" {
		c.logger.Info("EmailChannel: client %s has no email, skipping", ev.Appointment.ClientID)
		return nil
	}

	msg, err := c.render(ev, profile)
	if err != nil {
		return err
	}
	return c.sender.Send(ctx, msg)
}

func (c *EmailChannel) render(ev Event, profile *profileservice.Profile) (email.Message, error) {
	subject, ok := subjects[ev.Action]
	if !ok {
		return email.Message{}, fmt.Errorf("unknown notification action %q", ev.Action)
	}

	name := profile.FullName()
	if name == "" {
		name = "client"
	}
	data := emailData{
		Action:     string(ev.Action),
		Subject:    subject,
		ClientName: name,
		Service:    ev.Appointment.ServiceName,
		Date:       humanDate(ev.Appointment.Date),
		Time:       ev.Appointment.StartTime,
		Salon:      c.salon,
	}

	var text, html bytes.Buffer
	if err := textTemplate.Execute(&text, data); err != nil {
		return email.Message{}, fmt.Errorf("render text: %w", err)
	}
	if err := htmlTemplate.Execute(&html, data); err != nil {
		return email.Message{}, fmt.Errorf("render html: %w", err)
	}

	return email.Message{
		To:      profile.Email,
		ToName:  name,
		Subject: subject,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

// humanDate "2024-07-15" -> "Monday, 15 July 2024"
func humanDate(date string) string {
	t, err := time.Parse(domain.DateFormat, date)
	if err != nil {
		return date
	}
	return t.Format("Monday, 2 January 2006")
}
