package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/DRSN-tech/pocopan-pos/internal/usecase"
	"github.com/DRSN-tech/pocopan-pos/pkg/jitter"
	"github.com/DRSN-tech/pocopan-pos/pkg/logger"
)

// Notifier сообщает о появлении новых событий в outbox.
// WaitForNotification блокируется до уведомления или отмены ctx.
type Notifier interface {
	WaitForNotification(ctx context.Context) error
}

type WorkerOptions struct {
	BatchSize    int
	PollInterval time.Duration // как часто перечитывать outbox без уведомлений
	Backoff      jitter.Backoff
}

func DefaultWorkerOptions() WorkerOptions {
	return WorkerOptions{
		BatchSize:    10,
		PollInterval: 30 * time.Second,
		Backoff: jitter.Backoff{
			Base:   500 * time.Millisecond,
			Max:    30 * time.Second,
			Factor: jitter.DefaultFactor,
		},
	}
}

// OutboxWorker доставляет события из outbox в Kafka. Доставка at-least-once:
// событие, которое не удалось опубликовать, возвращается в pending.
type OutboxWorker struct {
	repo     usecase.OutboxRepository
	producer usecase.MessageProducer
	notifier Notifier
	logger   logger.Logger
	opts     WorkerOptions
	done     chan struct{}
}

// NewOutboxWorker создаёт воркер. notifier может быть nil, тогда outbox читается по таймеру.
func NewOutboxWorker(
	repo usecase.OutboxRepository,
	producer usecase.MessageProducer,
	notifier Notifier,
	opts WorkerOptions,
	logger logger.Logger,
) *OutboxWorker {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultWorkerOptions().BatchSize
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultWorkerOptions().PollInterval
	}

	return &OutboxWorker{
		repo:     repo,
		producer: producer,
		notifier: notifier,
		logger:   logger,
		opts:     opts,
		done:     make(chan struct{}),
	}
}

// Start запускает воркер в фоне до отмены ctx.
func (w *OutboxWorker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		w.Run(ctx)
	}()
}

// Wait дожидается остановки воркера, запущенного через Start.
func (w *OutboxWorker) Wait(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run сначала разбирает накопленные события, затем ждёт уведомлений.
func (w *OutboxWorker) Run(ctx context.Context) {
	w.logger.Infof("outbox worker started")
	defer w.logger.Infof("outbox worker stopped")

	attempt := 0
	for {
		if w.Drain(ctx) {
			attempt = 0
		} else {
			delay := w.opts.Backoff.Next(attempt)
			attempt++
			w.logger.Warnf("outbox delivery failed, retry in %s", delay)
			if !sleep(ctx, delay) {
				return
			}
			continue
		}

		if !w.wait(ctx) {
			return
		}
	}
}

// Drain публикует ожидающие события пачками. Возвращает false, если хотя бы
// одно событие не доставлено или outbox недоступен.
func (w *OutboxWorker) Drain(ctx context.Context) bool {
	for ctx.Err() == nil {
		events, err := w.repo.GetAndMarkAsProcessing(ctx, w.opts.BatchSize)
		if err != nil {
			if ctx.Err() == nil {
				w.logger.Errorf(err, "outbox: failed to fetch pending events")
			}
			return false
		}
		if len(events) == 0 {
			return true
		}

		if !w.publish(ctx, events) {
			return false
		}
	}

	return true
}

func (w *OutboxWorker) publish(ctx context.Context, events []*usecase.OutboxEvent) bool {
	ok := true
	for _, event := range events {
		// После первой неудачи остальные события пачки возвращаются в очередь без попытки,
		// чтобы порядок по терминалу не нарушался.
		if ok {
			err := w.producer.WriteRawMessage(ctx, usecase.NewEventMessageReq(event))
			if err == nil {
				if err := w.repo.MarkAsProcessed(ctx, event.ID); err != nil {
					w.logger.Warnf("outbox: mark processed failed for event %s: %v", event.EventID, err)
				}
				continue
			}
			w.logger.Warnf("outbox: publish %s (%s) failed: %v", event.EventID, event.AggregateKey, err)
			ok = false
		}

		if err := w.repo.MarkAsPending(context.WithoutCancel(ctx), event.ID); err != nil {
			w.logger.Errorf(err, "outbox: failed to return event %s to pending", event.EventID)
		}
	}

	return ok
}

// wait ждёт уведомления или интервала опроса. false — ctx отменён.
func (w *OutboxWorker) wait(ctx context.Context) bool {
	waitCtx, cancel := context.WithTimeout(ctx, w.opts.PollInterval)
	defer cancel()

	if w.notifier == nil {
		<-waitCtx.Done()
		return ctx.Err() == nil
	}

	err := w.notifier.WaitForNotification(waitCtx)
	if ctx.Err() != nil {
		return false
	}
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		w.logger.Warnf("outbox: notification listener failed: %v", err)
		return sleep(ctx, w.opts.Backoff.Next(0))
	}

	return true
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
