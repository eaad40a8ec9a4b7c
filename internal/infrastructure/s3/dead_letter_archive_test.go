package s3

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/andreyxaxa/wikimedia-consumer/internal/entity"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/types/errs"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	if in.Body != nil {
		f.body, _ = io.ReadAll(in.Body)
	}

	return &s3.PutObjectOutput{}, f.err
}

func testDeadLetter() *entity.DeadLetter {
	return &entity.DeadLetter{
		ID:              uuid.MustParse("6f1c3a52-7d4e-4b8e-9a51-0c2f7b9d1e10"),
		Payload:         []byte(`{"type":"edit","title":"X"}`),
		Reason:          "validation error: missing required fields: id",
		Kind:            errs.KindValidation,
		Attempts:        0,
		FailedAt:        time.Date(2025, 7, 24, 22, 1, 36, 0, time.UTC),
		SourceTopic:     "wikimedia-stream",
		SourcePartition: 2,
		SourceOffset:    1337,
	}
}

func TestDeadLetterArchive_Send(t *testing.T) {
	fake := &fakePutter{}
	a := &DeadLetterArchive{client: fake, bucket: "dlq", prefix: "dead-letters"}

	dl := testDeadLetter()
	require.NoError(t, a.Send(context.Background(), dl))

	assert.Equal(t, "dlq", aws.ToString(fake.input.Bucket))
	assert.Equal(t,
		"dead-letters/wikimedia-stream/2025/07/24/2-1337-6f1c3a52-7d4e-4b8e-9a51-0c2f7b9d1e10",
		aws.ToString(fake.input.Key),
	)
	assert.Equal(t, dl.Payload, fake.body, "payload must be stored verbatim")
	assert.Equal(t, int64(len(dl.Payload)), aws.ToInt64(fake.input.ContentLength))
	assert.Equal(t, "validation", fake.input.Metadata["dlq-error-kind"])
	assert.Equal(t, "1337", fake.input.Metadata["dlq-source-offset"])
}

func TestDeadLetterArchive_SendError(t *testing.T) {
	cause := errors.New("no such bucket")
	a := &DeadLetterArchive{client: &fakePutter{err: cause}, bucket: "dlq"}

	err := a.Send(context.Background(), testDeadLetter())
	assert.ErrorIs(t, err, cause)
}
