// Package exportstore keeps generated CSV exports and hands out download URLs.
//
// Two backends implement Store:
//
//   - Local writes into a directory and is served by the admin API itself.
//   - S3 writes to a bucket on Amazon S3 or an S3-compatible service such as
//     MinIO, with URLs built from the bucket endpoint or a configured base URL.
//
// Names are flat file names. Anything containing a path separator or ".." is
// rejected with ErrInvalidName.
//
// Exports are short-lived: the admin API removes earlier files sharing the
// export prefix before writing a new one.
//
//	store, err := exportstore.NewLocal(cfg.Dir, "/admin/api/exports/")
//	url, err := store.Put(ctx, "traffic-log-abc-1700000000.csv", bytes.NewReader(data))
package exportstore
