package upload_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/upload"
)

type fakeObject struct {
	data        []byte
	contentType string
	metadata    map[string]string
	modified    time.Time
}

// fakeS3 is an in-memory bucket.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]fakeObject
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string]fakeObject)}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = fakeObject{
		data:        data,
		contentType: aws.ToString(in.ContentType),
		metadata:    in.Metadata,
		modified:    time.Now(),
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchKey", Message: "missing"}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(obj.data)),
		ContentType:   aws.String(obj.contentType),
		ContentLength: aws.Int64(int64(len(obj.data))),
		Metadata:      obj.metadata,
	}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := &s3.ListObjectsV2Output{}
	for key, obj := range f.objects {
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(key), LastModified: aws.Time(obj.modified)})
		}
	}
	return out, nil
}

func (f *fakeS3) age(key string, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj := f.objects[key]
	obj.modified = obj.modified.Add(-d)
	f.objects[key] = obj
}

func (f *fakeS3) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func TestS3Store_SaveAndClaim(t *testing.T) {
	client := newFakeS3()
	store := upload.NewS3Store(client, "bookings", "uploads/", 0)
	ctx := context.Background()

	id, err := store.Save(ctx, "xray.png", "image/png", bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, ok := client.objects["uploads/"+id]; !ok {
		t.Fatalf("object not stored under prefix: %v", client.objects)
	}

	file, err := store.Claim(ctx, id)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	data, _ := io.ReadAll(file.Reader)
	if !bytes.Equal(data, pngHeader) || file.Filename != "xray.png" || file.ContentType != "image/png" || file.Size != int64(len(pngHeader)) {
		t.Errorf("file = %+v", file)
	}

	if err := file.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if client.len() != 0 {
		t.Errorf("object should be deleted on close")
	}
	if _, err := store.Claim(ctx, id); err != upload.ErrNotFound {
		t.Errorf("Claim after close err = %v, want ErrNotFound", err)
	}
}

func TestS3Store_RejectsOversizeAndBadIDs(t *testing.T) {
	client := newFakeS3()
	store := upload.NewS3Store(client, "bookings", "", 4)
	ctx := context.Background()

	if _, err := store.Save(ctx, "x", "", strings.NewReader("12345")); err != upload.ErrTooLarge {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}
	if client.len() != 0 {
		t.Errorf("oversize object uploaded")
	}
	if _, err := store.Claim(ctx, "../other-bucket/key"); err != upload.ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestS3Store_Cleanup(t *testing.T) {
	client := newFakeS3()
	store := upload.NewS3Store(client, "bookings", "uploads/", 0)
	ctx := context.Background()

	oldID, _ := store.Save(ctx, "old", "", strings.NewReader("old"))
	newID, _ := store.Save(ctx, "new", "", strings.NewReader("new"))
	client.age("uploads/"+oldID, 2*time.Hour)

	if err := store.Cleanup(ctx, time.Hour); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if _, err := store.Claim(ctx, oldID); err != upload.ErrNotFound {
		t.Errorf("expired object kept: %v", err)
	}
	if f, err := store.Claim(ctx, newID); err != nil {
		t.Errorf("fresh object removed: %v", err)
	} else {
		f.Close()
	}
}
