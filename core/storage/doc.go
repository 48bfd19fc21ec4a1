// Package storage exposes an object storage bucket as a provider fetch source.
//
// It wraps the MinIO Go client behind a narrow Client interface, which keeps
// storage interactions mockable in unit tests (see core/storage/mocks). It
// works against both AWS S3 and self-hosted MinIO instances.
//
// # Fetcher
//
// Fetcher implements provider.Fetcher on top of a bucket:
//
//   - "/path/to/object.json" returns the object body; the content type comes
//     from the stored metadata, or from the extension when none was stored.
//   - "/prefix/" (trailing slash) returns a JSON array describing every object
//     under the prefix, keyed by object name.
//   - missing objects and buckets become 404 responses with a reason/code body,
//     so providers report them as request errors.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	f := storage.NewFetcher(client, cfg.Storage.Bucket)
//	if err := f.Check(ctx); err != nil {
//	    return err
//	}
//	p := provider.New(provider.WithFetcher(f))
package storage
