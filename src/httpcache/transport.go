package httpcache

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"io"
	"net/http"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"

	"github.com/jklein88/finq/src/utils"
)

type ctxKey int

const noCacheKey ctxKey = iota

// NoCache marks a request context so the transport always hits the network
// and does not store the response. Used for anti-scraping token fetches
// that must be fresh.
func NoCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, noCacheKey, true)
}

func isNoCache(ctx context.Context) bool {
	v, _ := ctx.Value(noCacheKey).(bool)
	return v
}

type requestSignature struct {
	Method string
	URL    string
}

type cachedResponse struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
	FetchedAt  time.Time
}

// cachingTransport caches successful GET responses in badger, keyed by a
// hash of the request signature. Everything else passes through.
type cachingTransport struct {
	db   *badger.DB
	ttl  time.Duration
	base http.RoundTripper
}

func (t *cachingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet || isNoCache(req.Context()) {
		return t.base.RoundTrip(req)
	}

	key, err := utils.HashStruct(requestSignature{Method: req.Method, URL: req.URL.String()})
	if err != nil {
		return nil, fmt.Errorf("cachingTransport: failed to hash request: %w", err)
	}

	if cached, ok := t.lookup(key); ok {
		log.Debugf("cache hit: %s", req.URL)
		return cached.toResponse(req), nil
	}

	res, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		return res, nil
	}

	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("cachingTransport: failed to read response body: %w", err)
	}

	entry := cachedResponse{
		StatusCode: res.StatusCode,
		Status:     res.Status,
		Header:     res.Header,
		Body:       body,
		FetchedAt:  time.Now(),
	}

	if err := t.store(key, entry); err != nil {
		// A failed cache write degrades to uncached behavior.
		log.Warnf("cachingTransport: failed to store response for %s: %v", req.URL, err)
	}

	res.Body = io.NopCloser(bytes.NewReader(body))
	return res, nil
}

func (t *cachingTransport) lookup(key string) (*cachedResponse, bool) {
	var entry cachedResponse
	err := t.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return gob.NewDecoder(bytes.NewReader(val)).Decode(&entry)
		})
	})
	if err != nil {
		return nil, false
	}

	return &entry, true
}

func (t *cachingTransport) store(key string, entry cachedResponse) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entry); err != nil {
		return fmt.Errorf("store: failed to encode entry: %w", err)
	}

	return t.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), buf.Bytes()).WithTTL(t.ttl)
		return txn.SetEntry(e)
	})
}

func (c *cachedResponse) toResponse(req *http.Request) *http.Response {
	return &http.Response{
		StatusCode: c.StatusCode,
		Status:     c.Status,
		Header:     c.Header.Clone(),
		Body:       io.NopCloser(bytes.NewReader(c.Body)),
		Request:    req,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
	}
}
