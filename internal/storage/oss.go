package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/reelhub/backend/internal/apperr"
)

// OSSConfig holds the Aliyun OSS credentials and bucket
type OSSConfig struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
}

// OSSGateway writes objects to an Aliyun OSS bucket
type OSSGateway struct {
	bucket *oss.Bucket
	host   string
}

func NewOSSGateway(cfg OSSConfig) (*OSSGateway, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("create oss client: %w", err)
	}
	bucket, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("open oss bucket %q: %w", cfg.Bucket, err)
	}
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
	return &OSSGateway{bucket: bucket, host: cfg.Bucket + "." + endpoint}, nil
}

// Put uploads the object. The OSS SDK call is not context aware; ctx is only
// checked before the upload starts.
func (g *OSSGateway) Put(ctx context.Context, obj Object) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := ObjectKey(obj.Kind, obj.Name)

	var opts []oss.Option
	if obj.ContentType != "" {
		opts = append(opts, oss.ContentType(obj.ContentType))
	}
	if err := g.bucket.PutObject(key, obj.Body, opts...); err != nil {
		return "", fmt.Errorf("upload %s: %v: %w", key, err, apperr.ErrStorageUnavailable)
	}
	return "https://" + g.host + "/" + key, nil
}
