package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"events_notifier/internal/domain/notification"
)

const reminderSubject = "%s is about to start"

var reminderTemplate = template.Must(template.New("reminder").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif;">
  {{if .EventImg}}<img src="{{.EventImg}}" alt="" style="max-width: 100%;">{{end}}
  <h2>{{.EventName}}</h2>
  <p>An event you are attending starts soon.</p>
  <p><a href="{{.EventTargetURL}}">Jump in</a> &middot; <a href="{{.EventURL}}">Event details</a></p>
  <p>
    Share on <a href="{{.ShareOnFacebook}}">Facebook</a>
    or <a href="{{.ShareOnTwitter}}">Twitter</a>
  </p>
</body>
</html>
`))

func renderReminder(payload notification.EmailPayload) (string, error) {
	var buf bytes.Buffer
	if err := reminderTemplate.Execute(&buf, payload); err != nil {
		return "", fmt.Errorf("render reminder template: %w", err)
	}
	return buf.String(), nil
}
