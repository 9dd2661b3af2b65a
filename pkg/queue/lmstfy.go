package queue

import (
	"fmt"
	"time"

	"github.com/bitleak/lmstfy/client"
)

// Job is one delivery pulled from a queue.
type Job struct {
	ID    string
	Queue string
	Data  []byte
}

type Publisher interface {
	Publish(queue string, data []byte, ttl, delay time.Duration) error
}

type Source interface {
	Consume(queue string, ttr, timeout time.Duration) (*Job, error)
	Ack(queue, jobID string) error
}

// jobTries is how many deliveries lmstfy attempts before dropping a job.
const jobTries = 3

// Lmstfy wraps the lmstfy HTTP client.
type Lmstfy struct {
	cli *client.LmstfyClient
}

func NewLmstfy(host string, port int, namespace, token string) *Lmstfy {
	return &Lmstfy{cli: client.NewLmstfyClient(host, port, namespace, token)}
}

func (l *Lmstfy) Publish(queue string, data []byte, ttl, delay time.Duration) error {
	if _, err := l.cli.Publish(queue, data, uint32(ttl.Seconds()), jobTries, uint32(delay.Seconds())); err != nil {
		return fmt.Errorf("lmstfy publish failed: %w", err)
	}
	return nil
}

// Consume returns (nil, nil) when nothing arrived within timeout.
func (l *Lmstfy) Consume(queue string, ttr, timeout time.Duration) (*Job, error) {
	job, err := l.cli.Consume(queue, uint32(ttr.Seconds()), uint32(timeout.Seconds()))
	if err != nil {
		return nil, fmt.Errorf("lmstfy consume failed: %w", err)
	}
	if job == nil {
		return nil, nil
	}
	return &Job{ID: job.ID, Queue: job.Queue, Data: job.Data}, nil
}

func (l *Lmstfy) Ack(queue, jobID string) error {
	if err := l.cli.Ack(queue, jobID); err != nil {
		return fmt.Errorf("lmstfy ack failed: %w", err)
	}
	return nil
}
