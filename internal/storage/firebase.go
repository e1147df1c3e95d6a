package storage

import (
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	fbstorage "firebase.google.com/go/v4/storage"
	"github.com/reelhub/backend/internal/apperr"
)

// FirebaseGateway writes objects to the project's Cloud Storage bucket
type FirebaseGateway struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

// NewFirebaseGateway opens bucketName through the Firebase storage client.
func NewFirebaseGateway(client *fbstorage.Client, bucketName string) (*FirebaseGateway, error) {
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("open firebase bucket %q: %w", bucketName, err)
	}
	return &FirebaseGateway{bucket: bucket, bucketName: bucketName}, nil
}

func (g *FirebaseGateway) Put(ctx context.Context, obj Object) (string, error) {
	key := ObjectKey(obj.Kind, obj.Name)

	w := g.bucket.Object(key).NewWriter(ctx)
	w.ContentType = obj.ContentType
	if _, err := io.Copy(w, obj.Body); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload %s: %v: %w", key, err, apperr.ErrStorageUnavailable)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize %s: %v: %w", key, err, apperr.ErrStorageUnavailable)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucketName, key), nil
}
