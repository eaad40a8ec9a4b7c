package s3

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/andreyxaxa/wikimedia-consumer/internal/entity"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/s3client"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const _payloadContentType = "text/plain; charset=utf-8"

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// DeadLetterArchive stores each dead letter as one object, body = raw payload.
type DeadLetterArchive struct {
	client objectPutter
	bucket string
	prefix string
}

func NewDeadLetterArchive(s3c *s3client.S3Client, bucket, prefix string) *DeadLetterArchive {
	return &DeadLetterArchive{
		client: s3c.Client,
		bucket: bucket,
		prefix: prefix,
	}
}

func (a *DeadLetterArchive) Send(ctx context.Context, dl *entity.DeadLetter) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(a.key(dl)),
		Body:          bytes.NewReader(dl.Payload),
		ContentType:   aws.String(_payloadContentType),
		ContentLength: aws.Int64(int64(len(dl.Payload))),
		Metadata: map[string]string{
			"dlq-id":               dl.ID.String(),
			"dlq-reason":           dl.Reason,
			"dlq-error-kind":       string(dl.Kind),
			"dlq-attempts":         strconv.Itoa(dl.Attempts),
			"dlq-source-topic":     dl.SourceTopic,
			"dlq-source-partition": strconv.Itoa(dl.SourcePartition),
			"dlq-source-offset":    strconv.FormatInt(dl.SourceOffset, 10),
			"dlq-failed-at":        dl.FailedAt.Format(time.RFC3339Nano),
		},
	})
	if err != nil {
		return fmt.Errorf("DeadLetterArchive - Send - a.client.PutObject: %w", err)
	}

	return nil
}

// key is <prefix>/<topic>/<yyyy>/<mm>/<dd>/<partition>-<offset>-<id>.
func (a *DeadLetterArchive) key(dl *entity.DeadLetter) string {
	return path.Join(
		a.prefix,
		dl.SourceTopic,
		dl.FailedAt.UTC().Format("2006/01/02"),
		fmt.Sprintf("%d-%d-%s", dl.SourcePartition, dl.SourceOffset, dl.ID),
	)
}

// Close is a no-op: the S3 client holds no long-lived connections of its own.
func (a *DeadLetterArchive) Close() error {
	return nil
}
