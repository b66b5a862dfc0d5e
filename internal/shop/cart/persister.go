package cart

import (
	"context"
	"sync"
	"time"

	"github.com/shopfront-core/server/internal/shop/model"
	"github.com/shopfront-core/server/internal/shop/observers"
	logx "github.com/shopfront-core/server/pkg/logger"
)

// persister writes cart snapshots to the repository on its own goroutine.
// Only the newest pending snapshot is kept: a write queued behind another is replaced.
type persister struct {
	repo     model.CartRepository
	timeout  time.Duration
	recorder observers.Recorder

	pending chan []model.CartLine
	flush   chan chan struct{}
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

func newPersister(repo model.CartRepository, timeout time.Duration, recorder observers.Recorder) *persister {
	p := &persister{
		repo:     repo,
		timeout:  timeout,
		recorder: recorder,
		pending:  make(chan []model.CartLine, 1),
		flush:    make(chan chan struct{}),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

// save queues lines without waiting for the write. Callers serialize save.
func (p *persister) save(lines []model.CartLine) {
	select {
	case <-p.stop:
		return
	default:
	}
	select {
	case p.pending <- lines:
	default:
		select {
		case <-p.pending:
		default:
		}
		p.pending <- lines
	}
}

func (p *persister) run() {
	defer close(p.done)
	for {
		select {
		case lines := <-p.pending:
			p.write(lines)
		case ack := <-p.flush:
			p.drain()
			close(ack)
		case <-p.stop:
			p.drain()
			return
		}
	}
}

func (p *persister) drain() {
	select {
	case lines := <-p.pending:
		p.write(lines)
	default:
	}
}

func (p *persister) write(lines []model.CartLine) {
	ctx := context.Background()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	err := p.repo.Save(ctx, lines)
	p.recorder.ObservePersist(err == nil)
	if err != nil {
		// The in-memory cart stays authoritative for this session.
		logx.Warn().Err(err).Int("lines", len(lines)).Msg("failed to persist cart")
	}
}

// wait blocks until every snapshot queued before the call has been written.
func (p *persister) wait(ctx context.Context) error {
	ack := make(chan struct{})
	select {
	case p.flush <- ack:
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *persister) close(ctx context.Context) error {
	p.once.Do(func() { close(p.stop) })
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
