package jobs

import (
	"log"

	"Backend-Relific-Core/src/database"
	"Backend-Relific-Core/src/services/workflows"
	"Backend-Relific-Core/src/services/workflows/email"

	"github.com/hibiken/asynq"
)

// StartWorker runs the background queue consumer. It blocks, so callers
// normally run it in its own goroutine. A missing Redis or SMTP
// configuration disables the worker rather than crashing the API.
func StartWorker() {
	if database.RedisURI == "" {
		log.Println("⚠️ REDIS_URI not set. Worker will not start.")
		return
	}

	sender, err := email.NewSMTPSenderFromEnv()
	if err != nil {
		log.Println("⚠️ SMTP not configured, worker will not start:", err)
		return
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: database.RedisURI},
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(workflows.TypeNotifyEmail, workflows.HandleNotifyEmail(sender))

	log.Println("✅ Worker started, consuming queue tasks...")
	if err := srv.Run(mux); err != nil {
		log.Println("❌ Worker stopped:", err)
	}
}
