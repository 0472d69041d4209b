package mongo

import (
	"bytes"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bridgewatch/internal/repository"
)

// SnapshotStore implements repository.SnapshotStore on top of GridFS.
// Snapshot JPEGs are kept in the default bucket (fs.files / fs.chunks).
type SnapshotStore struct {
	bucket *gridfs.Bucket
}

// NewSnapshotStore creates a GridFS-backed snapshot store.
func NewSnapshotStore(db *DB) (*SnapshotStore, error) {
	bucket, err := gridfs.NewBucket(db.Database())
	if err != nil {
		return nil, fmt.Errorf("failed to create gridfs bucket: %w", err)
	}
	return &SnapshotStore{bucket: bucket}, nil
}

// Put uploads an image and returns its generated file id.
func (s *SnapshotStore) Put(filename string, data []byte) (primitive.ObjectID, error) {
	opts := options.GridFSUpload().SetMetadata(bson.M{"content_type": "image/jpeg"})
	id, err := s.bucket.UploadFromStream(filename, bytes.NewReader(data), opts)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to upload snapshot: %w", err)
	}
	return id, nil
}

// Get downloads an image by its file id. Returns repository.ErrSnapshotNotFound
// when no file with that id exists.
func (s *SnapshotStore) Get(id primitive.ObjectID) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := s.bucket.DownloadToStream(id, &buf); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, repository.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to download snapshot: %w", err)
	}
	return buf.Bytes(), nil
}
