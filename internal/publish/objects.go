package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
)

type objectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

func contentType(name string) string {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(name), ".")) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "json":
		return "application/json"
	case "mp4":
		return "video/mp4"
	case "avi":
		return "video/avi"
	case "mov":
		return "video/quicktime"
	default:
		return "application/octet-stream"
	}
}

func putBytes(ctx context.Context, cli objectPutter, bucket, objectPath string, data []byte) error {
	_, err := cli.PutObject(
		ctx,
		bucket,
		strings.TrimPrefix(objectPath, "/"),
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{
			ContentType: contentType(objectPath),
		},
	)
	if err != nil {
		return fmt.Errorf("put object %s to minio failed: %w", objectPath, err)
	}
	return nil
}
