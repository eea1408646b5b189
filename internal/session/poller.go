// Package session tracks the signed-in user while the board is open.
package session

import (
	"context"
	"io"
	"reflect"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jeryldev/sprintboard/internal/model"
)

const DefaultInterval = 5 * time.Second

// Fetcher returns the current user. *api.Client implements it.
type Fetcher interface {
	Me(ctx context.Context) (*model.User, error)
}

// Poller refreshes the current user on an interval and reports changes.
type Poller struct {
	fetch    Fetcher
	interval time.Duration
	log      logrus.FieldLogger

	mu   sync.Mutex
	last *model.User
}

func NewPoller(f Fetcher, interval time.Duration, log logrus.FieldLogger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Poller{fetch: f, interval: interval, log: log}
}

func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Current returns the last user seen, or nil before the first success.
func (p *Poller) Current() *model.User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Poll fetches the user once. changed is true when the user differs from
// the previous successful fetch. A failed fetch keeps the previous user.
func (p *Poller) Poll(ctx context.Context) (u *model.User, changed bool, err error) {
	u, err = p.fetch.Me(ctx)
	if err != nil {
		p.log.WithError(err).Warn("refreshing session user failed")
		return nil, false, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if reflect.DeepEqual(p.last, u) {
		return u, false, nil
	}
	p.last = u
	p.log.WithField("user_id", u.ID).Debug("session user changed")
	return u, true, nil
}

// Run polls immediately and then every interval until ctx is done, calling
// publish whenever the user changes. Fetch errors never stop the loop.
func (p *Poller) Run(ctx context.Context, publish func(*model.User)) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if u, changed, err := p.Poll(ctx); err == nil && changed {
			publish(u)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
