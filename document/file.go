package document

import (
	"context"
	"sync"
	"sync/atomic"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/arjunmahishi/tsls/cst"
	"github.com/arjunmahishi/tsls/langdef"
)

// File owns the snapshots of one document. Update calls are serialized;
// Snapshot may be called concurrently with Update.
type File struct {
	uri  protocol.DocumentURI
	def  *langdef.Definition
	opts Options

	mu     sync.Mutex // guards parser
	parser *cst.Parser

	current atomic.Pointer[Snapshot]
}

// NewFile creates an empty file. Nothing is visible until the first Update.
func NewFile(uri protocol.DocumentURI, language cst.Language, def *langdef.Definition, opts Options) *File {
	return &File{
		uri:    uri,
		def:    def,
		opts:   opts.withDefaults(),
		parser: cst.NewParser(language),
	}
}

// URI returns the document URI.
func (f *File) URI() protocol.DocumentURI { return f.uri }

// Snapshot returns the latest complete snapshot, or nil before the first
// Update.
func (f *File) Snapshot() *Snapshot {
	return f.current.Load()
}

// Update rebuilds the file from text and publishes the result. A version
// older than the current snapshot's is built but not published; the current
// snapshot is returned instead.
func (f *File) Update(ctx context.Context, version int32, text []byte) (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	next, err := Build(ctx, f.parser, f.def, f.uri, version, text, f.opts)
	if err != nil {
		return nil, err
	}

	if prev := f.current.Load(); prev != nil && prev.Version > version {
		f.opts.Logger.Debug("dropped stale snapshot",
			zap.String("uri", string(f.uri)),
			zap.Int32("version", version),
			zap.Int32("current", prev.Version))
		return prev, nil
	}
	f.current.Store(next)
	return next, nil
}
