package nutrition

import (
	"context"
	"sync"
)

type fakeRemote struct {
	mu       sync.Mutex
	search   map[string]Record
	barcode  map[string]Record
	searches []string
	barcodes []string
	fallback Record
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		search:   map[string]Record{},
		barcode:  map[string]Record{},
		fallback: Failure(KindNotFound, reasonNoProducts),
	}
}

func (f *fakeRemote) Search(_ context.Context, query string) Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, query)
	if rec, ok := f.search[query]; ok {
		return rec
	}
	return f.fallback
}

func (f *fakeRemote) LookupBarcode(_ context.Context, code string) Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.barcodes = append(f.barcodes, code)
	if rec, ok := f.barcode[code]; ok {
		return rec
	}
	return Failure(KindNotFound, reasonBarcodeNotFound)
}

func (f *fakeRemote) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searches)
}
