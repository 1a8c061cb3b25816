package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"schedulo/config"
	"schedulo/models"
	"schedulo/services/conversation"
	"schedulo/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
)

// InitReminderWorker runs the async reminder worker in background.
// Delivery is a structured log line; the payload carries everything a
// push or mail integration would need.
func InitReminderWorker() {
	redisOpts := asynq.RedisClientOpt{
		Addr: config.AppConfig.RedisAddr,
		DB:   config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendReminder, handleReminderTask)

	go func() {
		log.Println("[ReminderWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ReminderWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ReminderWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleReminderTask(ctx context.Context, task *asynq.Task) error {
	var p models.ReminderPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		log.Printf("[ReminderHandler] invalid payload: %v", err)
		return err
	}

	log.Printf("[ReminderHandler] reminder for event %s at %s: %s", p.EventID, p.FireDate, p.Body)
	return nil
}

// InitSessionSweeper periodically evicts idle sessions from the
// in-memory store. The Redis store relies on key TTLs instead, so this
// only runs when no Redis address is configured.
func InitSessionSweeper(store *conversation.MemorySessionStore) *cron.Cron {
	c := cron.New()
	c.AddFunc("@every 10m", func() {
		if removed := store.Sweep(time.Now()); removed > 0 {
			log.Printf("[SessionSweeper] evicted %d idle sessions", removed)
		}
	})
	c.Start()
	return c
}
