package items

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KirkDiggler/room-server/internal/errors"
)

// DefaultQueueSize is the write-behind buffer used when none is configured
const DefaultQueueSize = 1024

// WriteBehindConfig configures a write-behind item repository
type WriteBehindConfig struct {
	Repository Repository
	QueueSize  int
	// WriteTimeout bounds each queued write; zero means no bound
	WriteTimeout time.Duration
	Logger       *slog.Logger
}

// Validate validates the WriteBehindConfig.
func (cfg *WriteBehindConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	if cfg.Repository == nil {
		vb.RequiredField("Repository")
	}
	if cfg.QueueSize < 0 {
		vb.InvalidField("QueueSize", "cannot be negative")
	}
	return vb.Build()
}

// WriteBehind queues item writes and applies them on a single worker
// goroutine, in order. Reads and Create go straight to the wrapped
// repository, except inventory reads of an item with a write still queued,
// which are refused until the write lands. Failed writes are logged and not
// retried; a write that finds the queue full is logged and dropped.
type WriteBehind struct {
	Repository

	queue   chan writeJob
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}

	// queued writes per item id, enqueued but not yet applied
	inflightMu sync.Mutex
	inflight   map[int]int
}

type writeJob struct {
	op  string
	id  int
	run func(ctx context.Context) error
}

// NewWriteBehind wraps cfg.Repository and starts its worker
func NewWriteBehind(cfg *WriteBehindConfig) (*WriteBehind, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	size := cfg.QueueSize
	if size == 0 {
		size = DefaultQueueSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w := &WriteBehind{
		Repository: cfg.Repository,
		queue:      make(chan writeJob, size),
		timeout:    cfg.WriteTimeout,
		logger:     logger.With("component", "items_write_behind"),
		done:       make(chan struct{}),
		inflight:   make(map[int]int),
	}
	go w.work()

	return w, nil
}

// SaveItemPosition queues a position write
func (w *WriteBehind) SaveItemPosition(_ context.Context, input SaveItemPositionInput) (*SaveItemPositionOutput, error) {
	w.enqueue("save_position", input.ItemID, func(ctx context.Context) error {
		_, err := w.Repository.SaveItemPosition(ctx, input)
		return err
	})
	return &SaveItemPositionOutput{}, nil
}

// SaveItemVar queues a variable write
func (w *WriteBehind) SaveItemVar(_ context.Context, input SaveItemVarInput) (*SaveItemVarOutput, error) {
	w.enqueue("save_var", input.ItemID, func(ctx context.Context) error {
		_, err := w.Repository.SaveItemVar(ctx, input)
		return err
	})
	return &SaveItemVarOutput{}, nil
}

// DeleteItem queues a delete
func (w *WriteBehind) DeleteItem(_ context.Context, input DeleteItemInput) (*DeleteItemOutput, error) {
	w.enqueue("delete", input.ItemID, func(ctx context.Context) error {
		_, err := w.Repository.DeleteItem(ctx, input)
		return err
	})
	return &DeleteItemOutput{}, nil
}

// TransferItemToOwner queues a move into the owner's inventory
func (w *WriteBehind) TransferItemToOwner(_ context.Context, input TransferItemToOwnerInput) (*TransferItemToOwnerOutput, error) {
	w.enqueue("transfer", input.ItemID, func(ctx context.Context) error {
		_, err := w.Repository.TransferItemToOwner(ctx, input)
		return err
	})
	return &TransferItemToOwnerOutput{}, nil
}

// GetInventoryItem reads through to the wrapped repository unless the item
// has a queued write, in which case the stored row may be stale
func (w *WriteBehind) GetInventoryItem(ctx context.Context, input GetInventoryItemInput) (*GetInventoryItemOutput, error) {
	if w.inflightCount(input.ItemID) > 0 {
		return nil, errors.Unavailablef("item %d has a pending write", input.ItemID)
	}
	return w.Repository.GetInventoryItem(ctx, input)
}

// Pending reports how many writes are waiting
func (w *WriteBehind) Pending() int {
	return len(w.queue)
}

// Close stops accepting writes and waits until the queue drains or ctx ends
func (w *WriteBehind) Close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return errors.Wrapf(ctx.Err(), "%d item writes not flushed", len(w.queue))
	}
}

func (w *WriteBehind) enqueue(op string, id int, run func(ctx context.Context) error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		w.logger.Warn("write after close dropped", "op", op, "item_id", id)
		return
	}

	w.track(id, 1)
	select {
	case w.queue <- writeJob{op: op, id: id, run: run}:
	default:
		w.track(id, -1)
		w.logger.Warn("write queue full, write dropped", "op", op, "item_id", id)
	}
}

func (w *WriteBehind) track(id, delta int) {
	w.inflightMu.Lock()
	defer w.inflightMu.Unlock()

	n := w.inflight[id] + delta
	if n <= 0 {
		delete(w.inflight, id)
		return
	}
	w.inflight[id] = n
}

func (w *WriteBehind) inflightCount(id int) int {
	w.inflightMu.Lock()
	defer w.inflightMu.Unlock()
	return w.inflight[id]
}

func (w *WriteBehind) work() {
	defer close(w.done)

	for job := range w.queue {
		ctx := context.Background()
		cancel := func() {}
		if w.timeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, w.timeout)
		}

		if err := job.run(ctx); err != nil {
			w.logger.Error("item write failed", "op", job.op, "item_id", job.id, "error", err)
		}
		cancel()
		w.track(job.id, -1)
	}
}
