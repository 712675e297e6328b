package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/totsandteens/clinic-bookings/internal/appointments"
)

// ContentConfig identifies the clinic and where its alerts go.
type ContentConfig struct {
	ClinicName  string
	ClinicEmail string
	// Location renders the "booked on" timestamp in the clinic's local time.
	Location *time.Location
}

// ContentBuilder produces the clinic alert and parent confirmation for one
// appointment. Pure except for reading the clock.
type ContentBuilder struct {
	cfg ContentConfig
	now func() time.Time
}

// NewContentBuilder creates a content builder.
func NewContentBuilder(cfg ContentConfig) *ContentBuilder {
	if cfg.ClinicName == "" {
		cfg.ClinicName = "Tots and Teens Child Care Clinic"
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &ContentBuilder{cfg: cfg, now: time.Now}
}

// ClinicMessage builds the alert sent to the clinic's notification address.
// The body carries every populated field of the record.
func (b *ContentBuilder) ClinicMessage(appt *appointments.Appointment) Message {
	subject := fmt.Sprintf("New Appointment: %s for %s", appt.ChildName, appt.ServiceType)
	bookedOn := b.now().In(b.cfg.Location).Format("Monday, January 2, 2006 at 3:04 PM")

	rows := []struct{ label, value string }{
		{"Booking ID", appt.ID},
		{"Parent/Guardian", appt.ParentName},
		{"Email", appt.Email},
		{"Phone", appt.Phone},
		{"Child's Name", appt.ChildName},
		{"Age", appt.ChildAge},
		{"Service Requested", appt.ServiceType},
		{"Preferred Date", appt.PreferredDate},
		{"Preferred Time", appt.PreferredTime},
		{"Additional Notes", appt.AdditionalNotes},
		{"Booked On", bookedOn},
	}

	var text strings.Builder
	text.WriteString("New appointment request\n\n")
	for _, row := range rows {
		fmt.Fprintf(&text, "%s: %s\n", row.label, row.value)
	}
	text.WriteString("\nPlease contact the parent to confirm the appointment.\n")

	var html strings.Builder
	fmt.Fprintf(&html, `<div style="font-family: sans-serif; max-width: 600px;">
<h2 style="color: #FF6B6B;">🔔 New Appointment Request</h2>
<p><strong>%s</strong> has requested an appointment for <strong>%s</strong>.</p>
<table style="border-collapse: collapse; margin: 20px 0;">`, appt.ParentName, appt.ServiceType)
	for _, row := range rows {
		fmt.Fprintf(&html, `
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>%s:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>`, row.label, row.value)
	}
	fmt.Fprintf(&html, `
</table>
<p style="background: #fff3cd; padding: 12px; border-radius: 8px; border-left: 4px solid #FF6B6B;">
  ⚡ <strong>Action Required</strong> — Please contact the parent to confirm this appointment.
</p>
<p style="color: #6b7280; font-size: 12px; margin-top: 20px;">— %s</p>
</div>`, b.cfg.ClinicName)

	return Message{
		To:      b.cfg.ClinicEmail,
		ToName:  b.cfg.ClinicName,
		Subject: subject,
		Body:    text.String(),
		HTML:    html.String(),
	}
}

// ParentMessage builds the confirmation sent back to the parent.
func (b *ContentBuilder) ParentMessage(appt *appointments.Appointment) Message {
	subject := fmt.Sprintf("Appointment Confirmation: %s", appt.ServiceType)

	text := fmt.Sprintf(`Dear %s,

Thank you for booking with %s. We have received your appointment request.

Child: %s
Service: %s
Preferred Date: %s
Preferred Time: %s

We will call you shortly to confirm. Please arrive 10 minutes early.

— %s`,
		appt.ParentName, b.cfg.ClinicName,
		appt.ChildName, appt.ServiceType, appt.PreferredDate, appt.PreferredTime,
		b.cfg.ClinicName)

	html := fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px;">
<h2 style="color: #4ECDC4;">🎉 Appointment Request Received!</h2>
<p>Dear %s,</p>
<p>Thank you for choosing <strong>%s</strong>. We have received your request and will call you shortly to confirm.</p>
<table style="border-collapse: collapse; margin: 20px 0;">
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Child:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Service:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Preferred Date:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Preferred Time:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>
</table>
<p style="background: #f0fdf4; padding: 12px; border-radius: 8px; border-left: 4px solid #4ECDC4;">
  Please arrive 10 minutes early for your appointment.
</p>
<p style="color: #6b7280; font-size: 12px; margin-top: 20px;">— %s</p>
</div>`,
		appt.ParentName, b.cfg.ClinicName,
		appt.ChildName, appt.ServiceType, appt.PreferredDate, appt.PreferredTime,
		b.cfg.ClinicName)

	return Message{
		To:      appt.Email,
		ToName:  appt.ParentName,
		Subject: subject,
		Body:    text,
		HTML:    html,
	}
}
