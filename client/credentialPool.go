package client

import (
	"context"
	"sync"
	"time"

	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("client")

type credential struct {
	key   string
	usage []time.Time
}

// record inserts the provided time as the newest usage entry, evicting the oldest one
// when the record is already at capacity
func (c *credential) record(now time.Time, quota int) {
	if len(c.usage) >= quota {
		copy(c.usage, c.usage[1:])
		c.usage = c.usage[:len(c.usage)-1]
	}
	c.usage = append(c.usage, now)
}

// ArgsCredentialPool is the DTO used to create a new credential pool
type ArgsCredentialPool struct {
	Keys         []string
	Quota        int
	Window       time.Duration
	SafetyMargin time.Duration
}

// credentialPool rotates through the configured API keys, each bounded to Quota
// issuances inside the trailing Window
type credentialPool struct {
	mut    sync.Mutex
	creds  []*credential
	cursor int
	quota  int
	window time.Duration
	margin time.Duration
}

// NewCredentialPool creates a new credential pool
func NewCredentialPool(args ArgsCredentialPool) (*credentialPool, error) {
	if len(args.Keys) == 0 {
		return nil, errNoCredentials
	}
	if args.Quota <= 0 {
		return nil, errInvalidQuota
	}
	if args.Window <= 0 {
		return nil, errInvalidWindow
	}

	creds := make([]*credential, 0, len(args.Keys))
	for _, key := range args.Keys {
		creds = append(creds, &credential{
			key:   key,
			usage: make([]time.Time, 0, args.Quota),
		})
	}

	return &credentialPool{
		creds:  creds,
		quota:  args.Quota,
		window: args.Window,
		margin: args.SafetyMargin,
	}, nil
}

// Acquire blocks until a credential becomes eligible under its rate quota and returns
// its key, recording the issuance in that credential's usage window. The returned error
// can only be the context's error.
func (pool *credentialPool) Acquire(ctx context.Context) (string, error) {
	for {
		key, found, wait := pool.tryAcquire(time.Now())
		if found {
			return key, nil
		}

		log.Trace("all credentials at quota, sleeping", "wait", wait)

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		}
	}
}

// tryAcquire checks all credentials round-robin starting at the rotation cursor. When
// none is eligible it returns the minimum time until the oldest usage entry of any
// credential ages past the window, plus the safety margin.
func (pool *credentialPool) tryAcquire(now time.Time) (string, bool, time.Duration) {
	pool.mut.Lock()
	defer pool.mut.Unlock()

	numCreds := len(pool.creds)
	for i := 0; i < numCreds; i++ {
		idx := (pool.cursor + i) % numCreds
		cred := pool.creds[idx]

		eligible := len(cred.usage) < pool.quota || now.Sub(cred.usage[0]) >= pool.window
		if !eligible {
			continue
		}

		cred.record(now, pool.quota)
		pool.cursor = (idx + 1) % numCreds

		return cred.key, true, 0
	}

	// every usage record is full here, so usage[0] is always present
	minWait := pool.window
	for _, cred := range pool.creds {
		remaining := pool.window - now.Sub(cred.usage[0])
		if remaining < minWait {
			minWait = remaining
		}
	}
	if minWait < 0 {
		minWait = 0
	}

	return "", false, minWait + pool.margin
}

// IsInterfaceNil returns true if the value under the interface is nil
func (pool *credentialPool) IsInterfaceNil() bool {
	return pool == nil
}
