// Package s3 verifies Flink savepoints stored in S3-compatible object storage.
//
// A savepoint is a directory; Flink writes its _metadata file last, so a
// savepoint exists once that object can be read.
package s3
