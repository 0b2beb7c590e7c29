package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"freightdesk/internal/port"
)

// MockObjectStorage is a mock implementation of port.ObjectStorage. Tests
// that only care where documents land can call AcceptUploads and read the
// keys back with UploadedKeys.
type MockObjectStorage struct {
	mock.Mock
}

// AcceptUploads makes every Upload to bucket succeed.
func (m *MockObjectStorage) AcceptUploads(bucket string) *mock.Call {
	return m.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == bucket
	})).Return(&port.UploadOutput{Location: bucket}, nil)
}

// UploadedKeys lists the object keys passed to Upload, in call order.
func (m *MockObjectStorage) UploadedKeys() []string {
	var keys []string
	for _, c := range m.Calls {
		if c.Method != "Upload" {
			continue
		}
		if in, ok := c.Arguments.Get(1).(port.UploadInput); ok {
			keys = append(keys, in.Key)
		}
	}
	return keys
}

func (m *MockObjectStorage) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.UploadOutput), args.Error(1)
}

func (m *MockObjectStorage) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockObjectStorage) Delete(ctx context.Context, bucket, key string) error {
	args := m.Called(ctx, bucket, key)
	return args.Error(0)
}

func (m *MockObjectStorage) GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error) {
	args := m.Called(ctx, bucket, key, expirySeconds)
	return args.String(0), args.Error(1)
}
