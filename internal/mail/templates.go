package mail

import (
	"bytes"
	"html/template"
)

var contactTmpl = template.Must(template.New("contact").Parse(`<h2>New contact message</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Message:</strong></p>
<p>{{.Message}}</p>
`))

var replyTmpl = template.Must(template.New("reply").Parse(`<p>Hi {{.Name}},</p>
<p>{{.Reply}}</p>
<hr>
<p><em>You wrote:</em></p>
<blockquote>{{.Original}}</blockquote>
`))

// ContactNotification is the admin notification for a new contact message.
func ContactNotification(from, to, name, email, message string) (Message, error) {
	var b bytes.Buffer
	err := contactTmpl.Execute(&b, struct{ Name, Email, Message string }{name, email, message})
	if err != nil {
		return Message{}, err
	}
	return Message{
		From:    from,
		To:      to,
		ReplyTo: email,
		Subject: "New Message from " + name,
		HTML:    b.String(),
	}, nil
}

// ContactReply is the admin's answer to a contact message.
func ContactReply(from, to, name, reply, original string) (Message, error) {
	var b bytes.Buffer
	err := replyTmpl.Execute(&b, struct{ Name, Reply, Original string }{name, reply, original})
	if err != nil {
		return Message{}, err
	}
	return Message{
		From:    from,
		To:      to,
		Subject: "Re: your message",
		HTML:    b.String(),
	}, nil
}
