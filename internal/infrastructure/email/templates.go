package email

import (
	"fmt"
	"time"
)

// LeadConfirmation thanks a prospect for their inquiry
func LeadConfirmation(to, firstName string) Message {
	greeting := "Hello"
	if firstName != "" {
		greeting = "Hello " + firstName
	}
	return Message{
		To:      to,
		Subject: "We received your inquiry",
		HTML: fmt.Sprintf(
			"<p>%s,</p><p>Thanks for reaching out. A tax preparer will contact you within one business day.</p>",
			greeting),
		Text: fmt.Sprintf("%s,\n\nThanks for reaching out. A tax preparer will contact you within one business day.\n", greeting),
	}
}

// AppointmentReminder reminds a client of an upcoming appointment
func AppointmentReminder(to, firstName string, startsAt time.Time) Message {
	when := startsAt.Format("Monday, January 2 at 3:04 PM MST")
	return Message{
		To:      to,
		Subject: "Reminder: your appointment on " + startsAt.Format("Jan 2"),
		HTML: fmt.Sprintf(
			"<p>Hello %s,</p><p>This is a reminder of your appointment on %s.</p>",
			firstName, when),
		Text: fmt.Sprintf("Hello %s,\n\nThis is a reminder of your appointment on %s.\n", firstName, when),
	}
}

// ReturnStatusChanged notifies a client that their return moved
func ReturnStatusChanged(to, firstName string, taxYear int, status string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Your %d tax return is now %s", taxYear, status),
		HTML: fmt.Sprintf(
			"<p>Hello %s,</p><p>Your %d tax return status changed to <strong>%s</strong>. Log in to see the details.</p>",
			firstName, taxYear, status),
		Text: fmt.Sprintf("Hello %s,\n\nYour %d tax return status changed to %s. Log in to see the details.\n",
			firstName, taxYear, status),
	}
}
