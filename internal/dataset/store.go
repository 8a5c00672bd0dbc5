package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"k8s.io/klog/v2"
)

// Store opens matrix files for reading and writing.
type Store interface {
	// Open returns a reader for path. A missing object yields an error for
	// which errors.Is(err, os.ErrNotExist) is true.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Create returns a writer for path. Data is visible once Close returns
	// without error.
	Create(ctx context.Context, path string) (io.WriteCloser, error)
}

// Read loads a matrix from a local path or a gs:// URI. Paths ending in
// .safetensors are read as SafeTensors, everything else as CSV.
func Read(ctx context.Context, uri string) (*Matrix, error) {
	log := klog.FromContext(ctx)

	store, path, err := storeFor(uri)
	if err != nil {
		return nil, err
	}

	startedAt := time.Now()
	r, err := store.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", uri, err)
	}
	defer r.Close()

	decode := Decode
	if isSafeTensors(path) {
		decode = DecodeSafeTensors
	}
	m, err := decode(r)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", uri, err)
	}

	log.Info("read matrix", "uri", uri, "rows", m.Rows, "cols", m.Cols, "duration", time.Since(startedAt))
	return m, nil
}

// Write stores m at a local path or a gs:// URI, in the format Read
// would pick for it.
func Write(ctx context.Context, uri string, m *Matrix) error {
	log := klog.FromContext(ctx)

	store, path, err := storeFor(uri)
	if err != nil {
		return err
	}

	startedAt := time.Now()
	w, err := store.Create(ctx, path)
	if err != nil {
		return fmt.Errorf("creating %q: %w", uri, err)
	}
	encode := Encode
	if isSafeTensors(path) {
		encode = EncodeSafeTensors
	}
	if err := encode(w, m); err != nil {
		_ = w.Close()
		return fmt.Errorf("writing %q: %w", uri, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing %q: %w", uri, err)
	}

	log.Info("wrote matrix", "uri", uri, "rows", m.Rows, "cols", m.Cols, "duration", time.Since(startedAt))
	return nil
}

// ParseGCSURI splits gs://bucket/object. ok is false for other URIs.
func ParseGCSURI(uri string) (bucket, object string, ok bool) {
	rest, found := strings.CutPrefix(uri, "gs://")
	if !found {
		return "", "", false
	}
	bucket, object, _ = strings.Cut(rest, "/")
	return bucket, object, true
}

func storeFor(uri string) (Store, string, error) {
	bucket, object, ok := ParseGCSURI(uri)
	if !ok {
		return LocalStore{}, uri, nil
	}
	if bucket == "" || object == "" {
		return nil, "", fmt.Errorf("invalid GCS URI %q, want gs://<bucket>/<object>", uri)
	}
	return &GCSStore{Bucket: bucket}, object, nil
}

// LocalStore reads and writes files on the local filesystem.
type LocalStore struct{}

var _ Store = LocalStore{}

// Open opens the file at path.
func (LocalStore) Open(_ context.Context, path string) (io.ReadCloser, error) {
	return os.Open(path) //nolint:gosec // G304: user-supplied dataset path
}

// Create writes to a temp file next to path and renames it into place on Close.
func (LocalStore) Create(ctx context.Context, path string) (io.WriteCloser, error) {
	tempFile, err := os.CreateTemp(filepath.Dir(path), ".masher-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	return &renameOnClose{ctx: ctx, File: tempFile, dest: path}, nil
}

type renameOnClose struct {
	*os.File
	ctx  context.Context
	dest string
}

func (r *renameOnClose) Close() error {
	log := klog.FromContext(r.ctx)

	if err := r.File.Close(); err != nil {
		if err := os.Remove(r.Name()); err != nil {
			log.Error(err, "removing temp file", "path", r.Name())
		}
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(r.Name(), r.dest); err != nil {
		if err := os.Remove(r.Name()); err != nil {
			log.Error(err, "removing temp file", "path", r.Name())
		}
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// GCSStore reads and writes objects in a Cloud Storage bucket.
type GCSStore struct {
	Bucket string
}

var _ Store = (*GCSStore)(nil)

// Open opens object for reading.
func (g *GCSStore) Open(ctx context.Context, object string) (io.ReadCloser, error) {
	log := klog.FromContext(ctx)

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS storage client: %w", err)
	}

	log.Info("downloading object from GCS", "bucket", g.Bucket, "object", object)

	r, err := client.Bucket(g.Bucket).Object(object).NewReader(ctx)
	if err != nil {
		_ = client.Close()
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("gs://%s/%s: %w", g.Bucket, object, os.ErrNotExist)
		}
		return nil, fmt.Errorf("opening object from GCS: %w", err)
	}
	return &closeBoth{ReadCloser: r, client: client}, nil
}

// Create opens object for writing. The object is committed on Close.
func (g *GCSStore) Create(ctx context.Context, object string) (io.WriteCloser, error) {
	log := klog.FromContext(ctx)

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS storage client: %w", err)
	}

	log.Info("uploading object to GCS", "bucket", g.Bucket, "object", object)

	w := client.Bucket(g.Bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType(object)
	return &commitOnClose{Writer: w, client: client}, nil
}

type closeBoth struct {
	io.ReadCloser
	client *storage.Client
}

func (c *closeBoth) Close() error {
	err := c.ReadCloser.Close()
	if cerr := c.client.Close(); err == nil {
		err = cerr
	}
	return err
}

type commitOnClose struct {
	*storage.Writer
	client *storage.Client
}

func (c *commitOnClose) Close() error {
	err := c.Writer.Close()
	if err != nil {
		err = fmt.Errorf("closing GCS writer: %w", err)
	}
	if cerr := c.client.Close(); err == nil {
		err = cerr
	}
	return err
}

func contentType(path string) string {
	if isSafeTensors(path) {
		return "application/octet-stream"
	}
	return "text/csv"
}
