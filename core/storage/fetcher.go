package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"datasync/core/provider"

	"github.com/goccy/go-json"
	"github.com/minio/minio-go/v7"
)

// Fetcher serves bucket contents as provider responses. A request path names
// an object ("/users/latest.json"); a path ending in "/" lists the objects
// under that prefix as a JSON array.
type Fetcher struct {
	client Client
	bucket string
}

// NewFetcher returns a fetcher reading from bucket.
func NewFetcher(client Client, bucket string) *Fetcher {
	return &Fetcher{client: client, bucket: bucket}
}

// ObjectEntry describes one listed object.
type ObjectEntry struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ETag         string    `json:"etag"`
	LastModified time.Time `json:"last_modified"`
	ContentType  string    `json:"content_type,omitempty"`
}

// Check verifies that the configured bucket is reachable.
func (f *Fetcher) Check(ctx context.Context) error {
	exists, err := f.client.BucketExists(ctx, f.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", f.bucket, err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", f.bucket)
	}
	return nil
}

// Fetch implements provider.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	if req.Method != "" && req.Method != http.MethodGet {
		return errorResponse(http.StatusMethodNotAllowed, "storage source is read-only"), nil
	}
	name, err := objectName(req.URL)
	if err != nil {
		return nil, err
	}
	if name == "" || strings.HasSuffix(name, "/") {
		return f.list(ctx, name)
	}
	return f.get(ctx, name)
}

func (f *Fetcher) get(ctx context.Context, name string) (*provider.Response, error) {
	info, err := f.client.StatObject(ctx, f.bucket, name, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return errorResponse(http.StatusNotFound, "object "+name+" not found"), nil
		}
		return nil, fmt.Errorf("failed to stat object %s: %w", name, err)
	}

	obj, err := f.client.GetObject(ctx, f.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", name, err)
	}
	defer obj.Close()

	body, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", name, err)
	}

	return &provider.Response{
		StatusCode:  http.StatusOK,
		Status:      http.StatusText(http.StatusOK),
		ContentType: contentType(name, info.ContentType),
		Body:        body,
	}, nil
}

func (f *Fetcher) list(ctx context.Context, prefix string) (*provider.Response, error) {
	entries := make([]ObjectEntry, 0)
	for obj := range f.client.ListObjects(ctx, f.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			if isNotFound(obj.Err) {
				return errorResponse(http.StatusNotFound, "bucket "+f.bucket+" not found"), nil
			}
			return nil, fmt.Errorf("failed to list objects under %q: %w", prefix, obj.Err)
		}
		entries = append(entries, ObjectEntry{
			Key:          obj.Key,
			Size:         obj.Size,
			ETag:         obj.ETag,
			LastModified: obj.LastModified,
			ContentType:  obj.ContentType,
		})
	}

	body, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}
	return &provider.Response{
		StatusCode:  http.StatusOK,
		Status:      http.StatusText(http.StatusOK),
		ContentType: "application/json",
		Body:        body,
	}, nil
}

// objectName extracts the object key from a resolved request URL.
func objectName(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid object url %q: %w", raw, err)
	}
	p := strings.TrimPrefix(u.Path, "/")
	if p == "" {
		return "", nil
	}
	trailing := strings.HasSuffix(p, "/")
	p = path.Clean(p)
	if p == "." {
		return "", nil
	}
	if trailing {
		p += "/"
	}
	return p, nil
}

func contentType(name, stored string) string {
	if stored != "" && stored != "application/octet-stream" && stored != "binary/octet-stream" {
		return stored
	}
	if byExt := mime.TypeByExtension(path.Ext(name)); byExt != "" {
		return byExt
	}
	return "application/octet-stream"
}

func isNotFound(err error) bool {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		switch resp.Code {
		case "NoSuchKey", "NoSuchBucket":
			return true
		}
		return resp.StatusCode == http.StatusNotFound
	}
	return false
}

func errorResponse(status int, reason string) *provider.Response {
	body, _ := json.Marshal(map[string]any{"reason": reason, "code": status})
	return &provider.Response{
		StatusCode:  status,
		Status:      http.StatusText(status),
		ContentType: "application/json",
		Body:        body,
	}
}
