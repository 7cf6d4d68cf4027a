package cart

import "context"

// KV is the durable string-keyed store the cart is archived to. It is the
// narrowest surface the persistence layer needs: one key read at startup,
// one key written after every mutation.
type KV interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Ping(ctx context.Context) error
}
