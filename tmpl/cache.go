package tmpl

import (
	"bytes"
	"context"
	"encoding/gob"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// globalCache stores parsed templates keyed by source and parse options.
var globalCache sync.Map

// entry parses its source at most once.
type entry struct {
	once   sync.Once
	source string
	tmpl   *Template
	err    error
}

// hashOptions gob-encodes the parse-affecting options and hashes them with
// xxh3.
func hashOptions(key parseKey) uint64 {
	var buf bytes.Buffer

	_ = gob.NewEncoder(&buf).Encode(key.maxDepth)

	return xxh3.Hash(buf.Bytes())
}

func cacheKey(source string, o options) string {
	sum := xxh3.HashString(source) ^ hashOptions(o.parseKey())

	return strconv.FormatUint(sum, 36) + ":" + strconv.Itoa(len(source))
}

// Compile returns the parsed Template for s, parsing it on first use.
// Concurrent callers with the same source share one parse. Parse errors are
// cached as well.
func Compile(ctx context.Context, s string, opts ...Option) (*Template, error) {
	o := makeOptions(opts...)
	key := cacheKey(s, o)

	value, hit := globalCache.LoadOrStore(key, new(entry))

	e, ok := value.(*entry)
	if !ok {
		return nil, ErrParse.With(slog.String("issue", "invalid cache entry"))
	}

	o.logger.TraceContext(ctx, "cache lookup",
		slog.String("key", key),
		slog.Bool("cache_hit", hit))

	e.once.Do(func() {
		e.source = s
		e.tmpl, e.err = parse(ctx, s, o)
	})

	// An entry whose source collides with a different string is never
	// returned, whether it holds a template or a parse error.
	if e.source != s {
		return parse(ctx, s, o)
	}

	return e.tmpl, e.err
}

// CompileReader reads a format string from r and compiles it.
func CompileReader(ctx context.Context, r io.Reader, opts ...Option) (*Template, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, NewError("failed to read template").Wrap(err)
	}

	return Compile(ctx, string(data), opts...)
}

// ClearCache drops every cached template.
func ClearCache() {
	globalCache.Clear()
}
