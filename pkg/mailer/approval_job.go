package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// ApprovalJob is the JSON payload put on the RabbitMQ queue when a customer
// registration is waiting for approval.
type ApprovalJob struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	RegisteredAt time.Time `json:"registered_at"`
}

var approvalTmpl = template.Must(template.New("approval").Parse(`
<h2>Customer account pending approval</h2>
<p><b>{{.Username}}</b> ({{.Email}}) registered at {{.RegisteredAt.Format "02 Jan 2006 15:04 MST"}}
and is waiting for approval.</p>
<p>User id: <code>{{.UserID}}</code></p>
`))

// RenderApproval builds the subject and HTML body for an approval job.
func RenderApproval(job ApprovalJob) (subject, html string, err error) {
	var buf bytes.Buffer
	if err := approvalTmpl.Execute(&buf, job); err != nil {
		return "", "", err
	}
	subject = fmt.Sprintf("Approval needed: %s", job.Email)
	return subject, buf.String(), nil
}
