package cart

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// archiveKey is the single fixed key the serialized cart lives under. No
// versioning, no migration: the value is the JSON line-item list and
// nothing else.
const archiveKey = "cart"

// Archive persists the cart across restarts: one JSON write after every
// mutation, one read at startup.
type Archive struct {
	kv  KV
	log *zap.Logger
}

func NewArchive(kv KV, log *zap.Logger) *Archive {
	if log == nil {
		log = zap.NewNop()
	}
	return &Archive{kv: kv, log: log}
}

func (a *Archive) Save(ctx context.Context, items []LineItem) error {
	if items == nil {
		items = []LineItem{}
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return a.kv.Set(ctx, archiveKey, string(raw))
}

// Load reads the saved cart. An absent key, a read error, or malformed
// content all yield an empty cart: stale or corrupt durable state must
// never keep the storefront from starting. Malformed content is logged so
// the loss is visible to an operator.
func (a *Archive) Load(ctx context.Context) []LineItem {
	raw, found, err := a.kv.Get(ctx, archiveKey)
	if err != nil {
		a.log.Warn("cart archive read failed", zap.Error(err))
		return nil
	}
	if !found {
		return nil
	}

	var items []LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		a.log.Warn("cart archive malformed, starting empty", zap.Error(err))
		return nil
	}
	return items
}

func (a *Archive) Ping(ctx context.Context) error {
	return a.kv.Ping(ctx)
}
