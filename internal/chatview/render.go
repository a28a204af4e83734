package chatview

import (
	"bytes"
	"html/template"

	"mistral-chat/internal/models"
)

const messagesSrc = `{{range .Messages}}<div class="message {{roleClass .Role}}">{{.Content}}</div>{{end}}` +
	`{{if .Awaiting}}<div class="message assistant-message thinking">{{.Thinking}}</div>{{end}}`

var messagesTmpl = template.Must(template.New("messages").
	Funcs(template.FuncMap{"roleClass": roleClass}).
	Parse(messagesSrc))

func roleClass(r models.Role) string {
	if r == models.RoleUser {
		return "user-message"
	}
	return "assistant-message"
}

// Render returns the message list markup for s. While a reply is pending a
// placeholder is drawn after the history; it is never part of the
// conversation itself.
func (v *View) Render(s Snapshot) (template.HTML, error) {
	var buf bytes.Buffer
	err := messagesTmpl.Execute(&buf, struct {
		Snapshot
		Thinking string
	}{s, v.locale.Thinking})
	if err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
