// Package mailer 把队列中的邮件消息渲染成可发送的邮件。
package mailer

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"

	"github.com/wneessen/go-mail"
	"github.com/worksync-dev/worksync/backend/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var ErrUnsupportedType = errors.New("unsupported mail type")

type kind struct {
	subject  string
	template string
	data     func() any
}

var kinds = map[domain.MailType]kind{
	domain.MailAccountCreated: {
		subject:  "WorkSync - Your account",
		template: "account_created.html",
		data:     func() any { return &domain.AccountCreatedMailData{} },
	},
	domain.MailPasswordResetComplete: {
		subject:  "WorkSync - Password reset",
		template: "password_reset_completed.html",
		data:     func() any { return &domain.PasswordResetMailData{} },
	},
	domain.MailLeaveDecided: {
		subject:  "WorkSync - Leave request update",
		template: "leave_decided.html",
		data:     func() any { return &domain.LeaveDecidedMailData{} },
	},
}

type Renderer struct {
	from      string
	templates *template.Template
}

func NewRenderer(from string) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{from: from, templates: tmpl}, nil
}

// envelope 与 domain.MailMessage 相同，但 Data 延迟到确定类型后再解码
type envelope struct {
	Type domain.MailType `json:"type"`
	To   string          `json:"to"`
	Data json.RawMessage `json:"data"`
}

// Render 解码队列消息体并生成邮件，返回的错误都不值得重试
func (r *Renderer) Render(body []byte) (*mail.Msg, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode mail message: %w", err)
	}

	k, ok := kinds[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, env.Type)
	}

	data := k.data()
	if err := json.Unmarshal(env.Data, data); err != nil {
		return nil, fmt.Errorf("decode %s data: %w", env.Type, err)
	}

	msg := mail.NewMsg()
	if err := msg.From(r.from); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(env.To); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(k.subject)

	if err := msg.SetBodyHTMLTemplate(r.templates.Lookup(k.template), data); err != nil {
		return nil, fmt.Errorf("render %s: %w", k.template, err)
	}

	return msg, nil
}
