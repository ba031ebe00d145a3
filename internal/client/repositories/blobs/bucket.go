package blobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// buckets
	_ "gocloud.dev/blob/memblob"  // mem:// buckets
	"gocloud.dev/gcerrors"

	"github.com/dmitrijs2005/clipnote/internal/client/models"
	"github.com/dmitrijs2005/clipnote/internal/common"
)

const (
	nameMetadataKey = "name"
	contentType     = "application/octet-stream"
)

// BucketStore keeps blobs in a gocloud.dev bucket. Payloads are streamed in
// both directions.
type BucketStore struct {
	bucket *blob.Bucket
}

// OpenBucketStore opens a bucket by URL, e.g. "file:///var/lib/clipnote/blobs"
// or "mem://".
func OpenBucketStore(ctx context.Context, url string) (*BucketStore, error) {
	b, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %q: %w", url, err)
	}
	return NewBucketStore(b), nil
}

func NewBucketStore(b *blob.Bucket) *BucketStore {
	return &BucketStore{bucket: b}
}

// Close closes the underlying bucket.
func (s *BucketStore) Close() error {
	return s.bucket.Close()
}

func objectKey(kind models.MediaKind, id string) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return string(kind) + "/" + id, nil
}

func isNotFound(err error) bool {
	return gcerrors.Code(err) == gcerrors.NotFound
}

func (s *BucketStore) Put(ctx context.Context, kind models.MediaKind, id string, payload io.Reader, name string) error {
	key, err := objectKey(kind, id)
	if err != nil {
		return err
	}
	if id == "" {
		return common.ErrorMissingID
	}

	opts := &blob.WriterOptions{ContentType: contentType}
	if kind == models.MediaAudio {
		opts.Metadata = map[string]string{nameMetadataKey: name}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := s.bucket.NewWriter(ctx, key, opts)
	if err != nil {
		return fmt.Errorf("failed to put %s blob[%s]: %w", kind, id, err)
	}
	if _, err := io.Copy(w, payload); err != nil {
		// Cancelling before Close discards the partial object.
		cancel()
		_ = w.Close()
		return fmt.Errorf("failed to put %s blob[%s]: %w", kind, id, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to put %s blob[%s]: %w", kind, id, err)
	}
	return nil
}

func (s *BucketStore) Get(ctx context.Context, kind models.MediaKind, id string) (models.BlobEntry, error) {
	info, err := s.Stat(ctx, kind, id)
	if err != nil {
		return models.BlobEntry{}, err
	}

	key, _ := objectKey(kind, id)
	data, err := s.bucket.ReadAll(ctx, key)
	if isNotFound(err) {
		return models.BlobEntry{}, common.ErrorNotFound
	}
	if err != nil {
		return models.BlobEntry{}, fmt.Errorf("failed to get %s blob[%s]: %w", kind, id, err)
	}
	return models.BlobEntry{ID: id, Payload: data, Name: info.Name}, nil
}

func (s *BucketStore) Open(ctx context.Context, kind models.MediaKind, id string) (io.ReadCloser, error) {
	key, err := objectKey(kind, id)
	if err != nil {
		return nil, err
	}

	r, err := s.bucket.NewReader(ctx, key, nil)
	if isNotFound(err) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s blob[%s]: %w", kind, id, err)
	}
	return r, nil
}

func (s *BucketStore) Stat(ctx context.Context, kind models.MediaKind, id string) (models.BlobInfo, error) {
	key, err := objectKey(kind, id)
	if err != nil {
		return models.BlobInfo{}, err
	}

	attrs, err := s.bucket.Attributes(ctx, key)
	if isNotFound(err) {
		return models.BlobInfo{}, common.ErrorNotFound
	}
	if err != nil {
		return models.BlobInfo{}, fmt.Errorf("failed to stat %s blob[%s]: %w", kind, id, err)
	}
	return models.BlobInfo{ID: id, Name: attrs.Metadata[nameMetadataKey], Size: attrs.Size}, nil
}

// Rename rewrites the object, since bucket metadata is immutable.
func (s *BucketStore) Rename(ctx context.Context, kind models.MediaKind, id string, name string) error {
	r, err := s.Open(ctx, kind, id)
	if err != nil {
		return err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to rename %s blob[%s]: %w", kind, id, err)
	}

	key, _ := objectKey(kind, id)
	opts := &blob.WriterOptions{
		ContentType: contentType,
		Metadata:    map[string]string{nameMetadataKey: name},
	}
	if err := s.bucket.WriteAll(ctx, key, data, opts); err != nil {
		return fmt.Errorf("failed to rename %s blob[%s]: %w", kind, id, err)
	}
	return nil
}

func (s *BucketStore) Delete(ctx context.Context, kind models.MediaKind, id string) error {
	key, err := objectKey(kind, id)
	if err != nil {
		return err
	}

	err = s.bucket.Delete(ctx, key)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete %s blob[%s]: %w", kind, id, err)
	}
	return nil
}

func (s *BucketStore) ListKeys(ctx context.Context, kind models.MediaKind) ([]string, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	prefix := string(kind) + "/"

	var keys []string
	iter := s.bucket.List(&blob.ListOptions{Prefix: prefix})
	for {
		obj, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %s blobs: %w", kind, err)
		}
		if obj.IsDir {
			continue
		}
		keys = append(keys, strings.TrimPrefix(obj.Key, prefix))
	}
	return keys, nil
}
