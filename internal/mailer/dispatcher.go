package mailer

import (
	"context"
	"sync"
	"time"

	"franchisehub-api/internal/common/errors"
	"franchisehub-api/internal/common/logger"
	"franchisehub-api/internal/common/metrics"
)

// Job is one email waiting for delivery.
type Job struct {
	Type      string
	Recipient string
	Data      map[string]interface{}
}

// Dispatcher drains a bounded queue of email jobs on a single background
// goroutine. Delivery failures are retried with exponential backoff and then
// logged; they never fail the request that enqueued them.
type Dispatcher struct {
	sender      Sender
	logger      logger.Logger
	queue       chan Job
	maxRetries  int
	sendTimeout time.Duration

	stopOnce sync.Once
	done     chan struct{}
	wg       sync.WaitGroup
}

func NewDispatcher(sender Sender, log logger.Logger, queueSize, maxRetries int, sendTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		sender:      sender,
		logger:      log.WithFields(map[string]interface{}{"component": "mail-dispatcher"}),
		queue:       make(chan Job, queueSize),
		maxRetries:  maxRetries,
		sendTimeout: sendTimeout,
		done:        make(chan struct{}),
	}
}

// Start launches the delivery loop.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case job := <-d.queue:
				metrics.MailQueueDepth.Set(float64(len(d.queue)))
				d.deliver(job)
			case <-d.done:
				// Drain whatever is already queued before exiting.
				for {
					select {
					case job := <-d.queue:
						d.deliver(job)
					default:
						return
					}
				}
			}
		}
	}()
}

// Stop flushes the queue and stops the delivery loop.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.done)
	})
	d.wg.Wait()
}

// Enqueue queues an email for delivery. A full queue drops the job with a log
// entry rather than blocking a request handler.
func (d *Dispatcher) Enqueue(job Job) {
	select {
	case d.queue <- job:
		metrics.MailQueueDepth.Set(float64(len(d.queue)))
	default:
		metrics.EmailsSent.WithLabelValues("dropped").Inc()
		d.logger.Error("mail queue full, dropping email", map[string]interface{}{
			"type":      job.Type,
			"recipient": job.Recipient,
		})
	}
}

func (d *Dispatcher) deliver(job Job) {
	subject, body, err := Render(job.Type, job.Data)
	if err != nil {
		metrics.EmailsSent.WithLabelValues("failed").Inc()
		d.logger.Error("email render failed", map[string]interface{}{
			"type":  job.Type,
			"error": err,
		})
		return
	}

	delay := time.Second
	for attempt := 1; attempt <= d.maxRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
		err = d.sender.Send(ctx, job.Recipient, subject, body)
		cancel()
		if err == nil {
			metrics.EmailsSent.WithLabelValues("sent").Inc()
			d.logger.Info("email delivered", map[string]interface{}{
				"type":      job.Type,
				"recipient": job.Recipient,
				"attempt":   attempt,
			})
			return
		}

		if attempt < d.maxRetries {
			d.logger.Warn("email delivery failed, retrying", map[string]interface{}{
				"type":        job.Type,
				"recipient":   job.Recipient,
				"attempt":     attempt,
				"nextRetryIn": delay.String(),
				"error":       err,
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	metrics.EmailsSent.WithLabelValues("failed").Inc()
	deliveryErr := errors.NewEmailDeliveryError(job.Recipient, err)
	d.logger.Error("email delivery abandoned", map[string]interface{}{
		"type":      job.Type,
		"errorCode": string(deliveryErr.Code),
		"details":   deliveryErr.Details,
		"retries":   d.maxRetries,
	})
}
