package paymentgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/frahmantamala/courseware-platform/internal/payment"
)

// PaymentJob is one settlement to simulate: wait out the configured delay,
// then post a signed success callback to the webhook.
type PaymentJob struct {
	PaymentID   string
	AmountCents int64
}

type Worker struct {
	ID         int
	WorkerPool chan chan PaymentJob
	JobChannel chan PaymentJob
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan PaymentJob, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan PaymentJob),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(PaymentJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {

			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("worker processing settlement", "worker_id", w.ID, "payment_id", job.PaymentID)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

// Client is the in-process mock of the payment provider. It settles every
// queued payment by signing a callback token and posting it back to our own
// webhook, the same way a real provider would.
type Client struct {
	webhookURL      string
	callbackSecret  string
	settlementDelay time.Duration
	logger          *slog.Logger

	jobQueue   chan PaymentJob
	workerPool chan chan PaymentJob
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

type Config struct {
	WebhookURL      string
	CallbackSecret  string
	SettlementDelay time.Duration
	MaxWorkers      int
	JobQueueSize    int
	WorkerPoolSize  int
}

func NewClient(config Config, logger *slog.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 100
	}

	workerPoolSize := config.WorkerPoolSize
	if workerPoolSize <= 0 {
		workerPoolSize = maxWorkers
	}

	settlementDelay := config.SettlementDelay
	if settlementDelay <= 0 {
		settlementDelay = 2 * time.Second
	}

	client := &Client{
		webhookURL:      config.WebhookURL,
		callbackSecret:  config.CallbackSecret,
		settlementDelay: settlementDelay,
		logger:          logger,

		maxWorkers: maxWorkers,
		jobQueue:   make(chan PaymentJob, jobQueueSize),
		workerPool: make(chan chan PaymentJob, workerPoolSize),
		ctx:        ctx,
		cancel:     cancel,
	}

	client.startWorkerPool()

	return client
}

func (c *Client) startWorkerPool() {
	c.once.Do(func() {

		for i := 0; i < c.maxWorkers; i++ {
			worker := NewWorker(i, c.workerPool, c.logger)
			worker.Start(c.ctx, &c.wg, c.processSettlementJob)
		}

		go c.dispatch()

		c.logger.Info("mock gateway worker pool started",
			"max_workers", c.maxWorkers,
			"queue_size", cap(c.jobQueue))
	})
}

func (c *Client) dispatch() {
	defer c.wg.Done()
	c.wg.Add(1)

	for {
		select {
		case job := <-c.jobQueue:

			select {
			case jobChannel := <-c.workerPool:

				select {
				case jobChannel <- job:

				case <-c.ctx.Done():
					c.logger.Info("dispatcher shutting down")
					return
				}
			case <-c.ctx.Done():
				c.logger.Info("dispatcher shutting down")
				return
			}
		case <-c.ctx.Done():
			c.logger.Info("dispatcher shutting down")
			return
		}
	}
}

func (c *Client) Shutdown() {
	c.logger.Info("shutting down mock gateway client")
	c.cancel()
	c.wg.Wait()
	c.logger.Info("mock gateway client shutdown complete")
}

// EnqueueSettlement schedules the simulated settlement for a freshly created
// payment. A full queue drops the job; the payment just stays pending until
// the user simulates success themselves.
func (c *Client) EnqueueSettlement(paymentID string, amountCents int64) {
	job := PaymentJob{
		PaymentID:   paymentID,
		AmountCents: amountCents,
	}

	select {
	case c.jobQueue <- job:
		c.logger.Info("settlement queued",
			"payment_id", paymentID,
			"queue_length", len(c.jobQueue))
	default:
		c.logger.Warn("settlement queue full, payment stays pending",
			"payment_id", paymentID,
			"queue_capacity", cap(c.jobQueue))
	}
}

func (c *Client) processSettlementJob(job PaymentJob) {
	select {
	case <-time.After(c.settlementDelay):

	case <-c.ctx.Done():
		c.logger.Info("settlement cancelled", "payment_id", job.PaymentID)
		return
	}

	c.sendCallbackToWebhook(job)
}

func (c *Client) sendCallbackToWebhook(job PaymentJob) {
	token, err := payment.SignCallbackToken(c.callbackSecret, job.PaymentID)
	if err != nil {
		c.logger.Error("failed to sign callback token",
			"payment_id", job.PaymentID, "error", err)
		return
	}

	callback := payment.CallbackDTO{
		PaymentID: job.PaymentID,
		Status:    payment.CallbackStatusSuccess,
		Token:     token,
	}

	jsonData, err := json.Marshal(callback)
	if err != nil {
		c.logger.Error("failed to marshal callback", "error", err)
		return
	}

	c.logger.Info("sending settlement callback",
		"payment_id", job.PaymentID,
		"webhook_url", c.webhookURL)

	ctx, cancel := context.WithTimeout(c.ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", c.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		c.logger.Error("failed to create webhook request",
			"payment_id", job.PaymentID, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		c.logger.Error("webhook callback failed",
			"payment_id", job.PaymentID, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		c.logger.Info("settlement callback delivered",
			"payment_id", job.PaymentID,
			"status_code", resp.StatusCode)
	} else {
		c.logger.Warn("settlement callback rejected",
			"payment_id", job.PaymentID,
			"status_code", resp.StatusCode)
	}
}
