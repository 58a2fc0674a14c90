package minio

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/LitiDocket/internal/application/triage"
	"github.com/turtacn/LitiDocket/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LitiDocket/pkg/errors"
)

// objectPrefix namespaces triage documents within the bucket.
const objectPrefix = "documents/"

// DocumentStore is the MinIO-backed implementation of the triage document
// store.
type DocumentStore struct {
	client *Client
	logger logging.Logger
}

// NewDocumentStore constructs a store over an established client.
func NewDocumentStore(client *Client, logger logging.Logger) *DocumentStore {
	return &DocumentStore{client: client, logger: logger}
}

var _ triage.DocumentStore = (*DocumentStore)(nil)

// Fetch streams a document's raw content.  The caller closes the reader.
func (s *DocumentStore) Fetch(ctx context.Context, documentID string) (io.ReadCloser, error) {
	if s.client.isClosed() {
		return nil, ErrClientClosed
	}

	key := objectKey(documentID)
	// GetObject defers errors to the first Read; Stat up front turns a
	// missing key into a typed error before any bytes move.
	if _, err := s.client.api.StatObject(ctx, s.client.Bucket(), key, minio.StatObjectOptions{}); err != nil {
		return nil, mapObjectError(err, documentID)
	}

	obj, err := s.client.api.GetObject(ctx, s.client.Bucket(), key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapObjectError(err, documentID)
	}
	return obj, nil
}

// Exists reports whether the document is present without fetching it.
func (s *DocumentStore) Exists(ctx context.Context, documentID string) (bool, error) {
	if s.client.isClosed() {
		return false, ErrClientClosed
	}

	_, err := s.client.api.StatObject(ctx, s.client.Bucket(), objectKey(documentID), minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to stat document")
	}
	return true, nil
}

// Put uploads a document, overwriting any previous version.  size may be -1
// when unknown; the SDK then falls back to multipart streaming.
func (s *DocumentStore) Put(ctx context.Context, documentID string, content io.Reader, size int64, contentType string) error {
	if s.client.isClosed() {
		return ErrClientClosed
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.api.PutObject(ctx, s.client.Bucket(), objectKey(documentID), content, size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		s.logger.Error("document upload failed",
			logging.String("document_id", documentID), logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to store document")
	}
	return nil
}

// Delete removes a stored document.  Deleting an absent document is a no-op;
// the SDK treats it as success.
func (s *DocumentStore) Delete(ctx context.Context, documentID string) error {
	if s.client.isClosed() {
		return ErrClientClosed
	}

	err := s.client.api.RemoveObject(ctx, s.client.Bucket(), objectKey(documentID), minio.RemoveObjectOptions{})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to delete document")
	}
	return nil
}

func objectKey(documentID string) string {
	return objectPrefix + documentID
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket"
}

func mapObjectError(err error, documentID string) error {
	if isNotFound(err) {
		return errors.Newf(errors.ErrCodeDocumentNotFound, "document %s not found", documentID)
	}
	return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to fetch document")
}
