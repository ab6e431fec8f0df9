package report

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
)

// UploadToGCS writes a report as a JSON object in the given bucket.
// It assumes Application Default Credentials are configured.
func UploadToGCS(ctx context.Context, bucketName, objectName string, rep Report) (string, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("UploadToGCS: create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	obj := client.Bucket(bucketName).Object(objectName)
	w := obj.NewWriter(ctx)
	w.ContentType = "application/json"

	if err := WriteJSON(w, rep); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("UploadToGCS: write report: %w", err)
	}

	// Close finalizes the upload.
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("UploadToGCS: finalize upload: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", bucketName, objectName), nil
}
