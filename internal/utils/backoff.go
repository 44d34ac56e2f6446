package utils

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type Backoff struct {
	base       time.Duration
	maxRetries int
}

func NewBackoff(base time.Duration, maxRetries int) Backoff {
	return Backoff{base: base, maxRetries: maxRetries}
}

// Permanent corta los reintentos (p.ej. un 4xx).
func Permanent(err error) error { return backoff.Permanent(err) }

// Do reintenta fn con backoff exponencial + jitter hasta maxRetries reintentos.
func (b Backoff) Do(ctx context.Context, fn func(i int) error) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = b.base
	eb.MaxElapsedTime = 0
	i := 0
	op := func() error {
		err := fn(i)
		i++
		return err
	}
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(eb, uint64(b.maxRetries)), ctx))
}
