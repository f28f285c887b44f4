package sdk

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/granite-tools/packmgr/internal/errx"
	"github.com/granite-tools/packmgr/pkg/api"
)

// Availability is the outcome of one service probe: either the service
// answered and Available says whether it is ready, or Err says why the
// probe failed.
type Availability struct {
	Available bool
	Err       error
}

// CheckAvailability probes the service once. The exec service rejects GET
// with 405 once it is up, so 405 means available and any other status
// means not yet. A 401 is an error.
func (c *Client) CheckAvailability(ctx context.Context) Availability {
	var available bool
	err := c.do(ctx, c.get(JSONServicePath, nil), func(resp *http.Response) error {
		if resp.StatusCode == http.StatusUnauthorized {
			return ErrUnauthorized
		}
		available = resp.StatusCode == http.StatusMethodNotAllowed
		return nil
	})
	if err != nil {
		return Availability{Err: err}
	}
	return Availability{Available: available}
}

// WaitForService polls until the service is available. The delay between
// probes grows by PollInterval per try up to MaxPollDelay. ServiceTimeout,
// when set, bounds the whole wait.
func (c *Client) WaitForService(ctx context.Context) error {
	if c.cfg.ServiceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.ServiceTimeout)
		defer cancel()
	}

	for tries := 0; ; tries++ {
		timer := time.NewTimer(c.pollDelay(tries))
		select {
		case <-ctx.Done():
			timer.Stop()
			return waitError(ctx)
		case <-timer.C:
		}

		a := c.CheckAvailability(ctx)
		if a.Err != nil {
			if ctx.Err() != nil {
				return waitError(ctx)
			}
			return a.Err
		}
		if a.Available {
			return nil
		}
		c.log.Debug("service not yet available", zap.Int("tries", tries+1))
	}
}

func (c *Client) pollDelay(tries int) time.Duration {
	delay := time.Duration(tries) * c.cfg.PollInterval
	if c.cfg.MaxPollDelay > 0 && delay > c.cfg.MaxPollDelay {
		delay = c.cfg.MaxPollDelay
	}
	return delay
}

func waitError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errx.Wrap(api.ErrServiceTimeout, ctx.Err())
	}
	return ctx.Err()
}
