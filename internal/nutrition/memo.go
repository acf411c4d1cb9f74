package nutrition

import (
	"context"
	"errors"
	"time"

	"github.com/viccon/sturdyc"
)

const (
	memoCapacity        = 512
	memoShards          = 4
	memoEvictionPercent = 10
)

// errorRecord carries an error record out of a sturdyc fetch so it is
// returned to the caller without being memoized.
type errorRecord struct {
	record Record
}

func (e *errorRecord) Error() string { return e.record.Reason() }

type memoRemote struct {
	next  Remote
	cache *sturdyc.Client[Record]
}

// Memoize wraps next with an in-process TTL cache of successful lookups.
// A non-positive ttl returns next unchanged.
func Memoize(next Remote, ttl time.Duration) Remote {
	if ttl <= 0 || next == nil {
		return next
	}
	return &memoRemote{
		next:  next,
		cache: sturdyc.New[Record](memoCapacity, memoShards, ttl, memoEvictionPercent),
	}
}

func (m *memoRemote) Search(ctx context.Context, query string) Record {
	return m.fetch(ctx, "search:"+query, prefixSearchFailed, func(ctx context.Context) Record {
		return m.next.Search(ctx, query)
	})
}

func (m *memoRemote) LookupBarcode(ctx context.Context, code string) Record {
	return m.fetch(ctx, "barcode:"+code, prefixBarcodeFailed, func(ctx context.Context) Record {
		return m.next.LookupBarcode(ctx, code)
	})
}

func (m *memoRemote) fetch(ctx context.Context, key, failurePrefix string, lookup func(context.Context) Record) Record {
	rec, err := m.cache.GetOrFetch(ctx, key, func(ctx context.Context) (Record, error) {
		rec := lookup(ctx)
		if rec.IsError() {
			return Record{}, &errorRecord{record: rec}
		}
		return rec, nil
	})
	if err != nil {
		return fetchFailure(failurePrefix, err)
	}
	return rec
}

// fetchFailure turns a GetOrFetch error into the record the caller sees.
func fetchFailure(prefix string, err error) Record {
	var carried *errorRecord
	if errors.As(err, &carried) {
		return carried.record
	}
	return Failure(KindRemoteFailure, prefix+err.Error())
}
