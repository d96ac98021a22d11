package loader

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ObjectStore lists and reads source objects.
type ObjectStore interface {
	// List returns every object whose location starts with uri, sorted.
	List(ctx context.Context, uri string) ([]string, error)

	// Open returns the content of one object.
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// IsS3URI reports whether uri names an S3 location.
func IsS3URI(uri string) bool {
	return strings.HasPrefix(uri, "s3://")
}

// LocalStore reads objects from the local filesystem. A location is a path
// prefix: a directory selects every file beneath it, any other prefix selects
// the files whose path starts with it. A leading file:// is ignored.
type LocalStore struct{}

func (LocalStore) List(_ context.Context, uri string) ([]string, error) {
	prefix := filepath.Clean(strings.TrimPrefix(uri, "file://"))

	root := prefix
	info, err := os.Stat(prefix)
	if err != nil || !info.IsDir() {
		root = filepath.Dir(prefix)
	}

	var out []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasPrefix(path, prefix) {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", uri, err)
	}
	sort.Strings(out)
	return out, nil
}

func (LocalStore) Open(_ context.Context, uri string) (io.ReadCloser, error) {
	f, err := os.Open(strings.TrimPrefix(uri, "file://"))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", uri, err)
	}
	return f, nil
}

// Router dispatches s3:// locations to an S3 store and everything else to the
// local filesystem. The S3 store is created on first use so local runs never
// touch AWS configuration.
type Router struct {
	local ObjectStore
	newS3 func(ctx context.Context) (ObjectStore, error)

	mu sync.Mutex
	s3 ObjectStore
}

// NewRouter creates a Router whose S3 client uses the default AWS credential
// chain in the given region.
func NewRouter(region string) *Router {
	return &Router{
		local: LocalStore{},
		newS3: func(ctx context.Context) (ObjectStore, error) {
			return NewS3Store(ctx, region)
		},
	}
}

// NewRouterWithStores creates a Router over explicit stores.
func NewRouterWithStores(local, s3 ObjectStore) *Router {
	return &Router{
		local: local,
		newS3: func(context.Context) (ObjectStore, error) {
			if s3 == nil {
				return nil, fmt.Errorf("no S3 store configured")
			}
			return s3, nil
		},
	}
}

func (r *Router) List(ctx context.Context, uri string) ([]string, error) {
	store, err := r.storeFor(ctx, uri)
	if err != nil {
		return nil, err
	}
	return store.List(ctx, uri)
}

func (r *Router) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	store, err := r.storeFor(ctx, uri)
	if err != nil {
		return nil, err
	}
	return store.Open(ctx, uri)
}

func (r *Router) storeFor(ctx context.Context, uri string) (ObjectStore, error) {
	if !IsS3URI(uri) {
		return r.local, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.s3 == nil {
		s, err := r.newS3(ctx)
		if err != nil {
			return nil, err
		}
		r.s3 = s
	}
	return r.s3, nil
}
