package workflows

import (
	"context"
	"encoding/json"
	"log"

	DB "Backend-Relific-Core/src/database"
	"Backend-Relific-Core/src/services/workflows/email"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TypeNotifyEmail = "workflows:notify-email"

type NotifyEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

func NewNotifyEmailTask(to, subject, html string) (*asynq.Task, error) {
	b, err := json.Marshal(NotifyEmailPayload{To: to, Subject: subject, HTML: html})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeNotifyEmail, b), nil
}

// HandleNotifyEmail delivers one queued workflow notification.
func HandleNotifyEmail(sender email.MailSender) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload NotifyEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			log.Println("❌ notify payload decode error:", err)
			return err
		}

		if err := sender.Send(payload.To, payload.Subject, payload.HTML); err != nil {
			log.Println("❌ send workflow mail to", payload.To, ":", err)
			return err
		}
		return nil
	}
}

// Dispatcher is the engine's delivery path: enqueue when the queue is up,
// otherwise send synchronously. Each task gets a fresh ID because the same
// recipient may legitimately be notified many times.
type Dispatcher struct {
	Sender email.MailSender // used for the synchronous fallback; built from env when nil
}

func (d *Dispatcher) Send(to, subject, html string) error {
	if DB.AsynqClient != nil {
		task, err := NewNotifyEmailTask(to, subject, html)
		if err != nil {
			return err
		}
		_, err = DB.AsynqClient.Enqueue(task,
			asynq.TaskID("wf-notify-"+uuid.NewString()),
			asynq.MaxRetry(3))
		if err != nil {
			log.Println("❌ enqueue workflow notification:", err)
			return err
		}
		return nil
	}

	// no Redis → send immediately
	sender := d.Sender
	if sender == nil {
		s, err := email.NewSMTPSenderFromEnv()
		if err != nil {
			return err
		}
		sender = s
	}
	return sender.Send(to, subject, html)
}
