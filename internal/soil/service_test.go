package soil

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	failPut    error
	failDelete error
}

func newFakeStore() *fakeStore { return &fakeStore{objects: map[string][]byte{}} }

func (f *fakeStore) Put(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	if f.failPut != nil {
		return f.failPut
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.objects[key] = data
	f.mu.Unlock()
	return nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete != nil {
		return f.failDelete
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	return "https://objects.test/" + key + "?expires=" + ttl.String(), nil
}

func TestUploadStoresObjectAndMetadata(t *testing.T) {
	store := newFakeStore()
	svc := NewService(NewMemoryRepository(), store, 1024)
	ctx := context.Background()

	report, err := svc.Upload(ctx, "user-1", Upload{FileName: "../lab/Result.PDF", ContentType: "application/pdf", Size: 5}, strings.NewReader("hello"))
	require.NoError(t, err)
	require.Equal(t, "Result.PDF", report.FileName)
	require.True(t, strings.HasPrefix(report.ObjectKey, "soil-reports/user-1/"))
	require.True(t, strings.HasSuffix(report.ObjectKey, ".pdf"))
	require.Equal(t, []byte("hello"), store.objects[report.ObjectKey])

	reports, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, reports, 1)

	got, url, err := svc.Get(ctx, "user-1", report.ID)
	require.NoError(t, err)
	require.Equal(t, report.ID, got.ID)
	require.Contains(t, url, report.ObjectKey)
	require.Contains(t, url, DownloadURLTTL.String())
}

func TestUploadRejectsEmptyAndOversizedFiles(t *testing.T) {
	svc := NewService(NewMemoryRepository(), newFakeStore(), 4)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "user-1", Upload{FileName: "a.txt", Size: 0}, bytes.NewReader(nil))
	require.ErrorIs(t, err, ErrEmptyFile)

	_, err = svc.Upload(ctx, "user-1", Upload{FileName: "a.txt", Size: 5}, strings.NewReader("12345"))
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestUploadDefaultsContentType(t *testing.T) {
	svc := NewService(NewMemoryRepository(), newFakeStore(), 0)

	report, err := svc.Upload(context.Background(), "user-1", Upload{FileName: "scan", Size: 3}, strings.NewReader("abc"))
	require.NoError(t, err)
	require.Equal(t, defaultContentType, report.ContentType)
}

func TestUploadStoreFailureRecordsNothing(t *testing.T) {
	store := newFakeStore()
	store.failPut = errors.New("bucket offline")
	repo := NewMemoryRepository()
	svc := NewService(repo, store, 0)

	_, err := svc.Upload(context.Background(), "user-1", Upload{FileName: "a.txt", Size: 1}, strings.NewReader("x"))
	require.Error(t, err)

	reports, err := repo.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Empty(t, reports)
}

func TestGetHidesOtherUsersReports(t *testing.T) {
	svc := NewService(NewMemoryRepository(), newFakeStore(), 0)
	ctx := context.Background()

	report, err := svc.Upload(ctx, "owner", Upload{FileName: "a.txt", Size: 1}, strings.NewReader("x"))
	require.NoError(t, err)

	_, _, err = svc.Get(ctx, "intruder", report.ID)
	require.ErrorIs(t, err, ErrNotFound)

	_, _, err = svc.Get(ctx, "owner", "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

type failingRepo struct {
	Repository
	err error
}

func (f failingRepo) Insert(context.Context, Report) error { return f.err }

func TestUploadRemovesObjectWhenRecordFails(t *testing.T) {
	store := newFakeStore()
	svc := NewService(failingRepo{Repository: NewMemoryRepository(), err: errors.New("db down")}, store, 0)

	_, err := svc.Upload(context.Background(), "user-1", Upload{FileName: "a.txt", Size: 1}, strings.NewReader("x"))
	require.ErrorContains(t, err, "db down")
	require.Empty(t, store.objects)
}

func TestUploadReportsOrphanedObject(t *testing.T) {
	store := newFakeStore()
	store.failDelete = errors.New("bucket offline")
	svc := NewService(failingRepo{Repository: NewMemoryRepository(), err: errors.New("db down")}, store, 0)

	_, err := svc.Upload(context.Background(), "user-1", Upload{FileName: "a.txt", Size: 1}, strings.NewReader("x"))
	require.ErrorContains(t, err, "db down")
	require.ErrorContains(t, err, "orphaned object soil-reports/user-1/")
	require.Len(t, store.objects, 1)
}
