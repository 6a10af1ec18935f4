package scans

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/stocktakehq/stockaudit-backend/pkg/db/models"
	pkgerrors "github.com/stocktakehq/stockaudit-backend/pkg/errors"
	"github.com/stocktakehq/stockaudit-backend/pkg/idempotency"
	"github.com/stocktakehq/stockaudit-backend/pkg/pagination"
)

type fakeRepo struct {
	inserted [][]models.Scan
	failNext bool
}

func (f *fakeRepo) InsertBatch(_ context.Context, batch []models.Scan) error {
	if f.failNext {
		f.failNext = false
		return fmt.Errorf("insert failed")
	}
	copied := make([]models.Scan, len(batch))
	copy(copied, batch)
	f.inserted = append(f.inserted, copied)
	return nil
}

func (f *fakeRepo) ListByRack(_ context.Context, _ uuid.UUID, _ listScansParams) ([]models.Scan, *pagination.Cursor, error) {
	return nil, nil, nil
}

func (f *fakeRepo) CountByRack(_ context.Context, _ uuid.UUID) (int64, error) {
	return 0, nil
}

// fakeStore implements the redis surface the idempotency manager needs.
type fakeStore struct {
	keys map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{keys: map[string]string{}}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	return f.keys[key], nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.keys[key]; ok {
		return false, nil
	}
	f.keys[key] = fmt.Sprint(value)
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return "sa:idempotency:" + scope + ":" + id
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.keys, key)
	}
	return nil
}

func newScan(clientScanID, barcode string) models.Scan {
	return models.Scan{
		ClientScanID:   clientScanID,
		Barcode:        barcode,
		RackID:         uuid.New(),
		AuditSessionID: uuid.New(),
		ScannerID:      uuid.New(),
		DeviceID:       "dev-test",
		CreatedAt:      time.Now().UTC(),
	}
}

func TestIngestBatchAcceptsAndFillsDefaults(t *testing.T) {
	repo := &fakeRepo{}
	svc, err := NewService(repo, nil)
	require.NoError(t, err)

	result, err := svc.IngestBatch(context.Background(), []models.Scan{
		newScan("c-1", "400000000001"),
		newScan("c-2", "400000000002"),
	})
	require.NoError(t, err)
	require.Equal(t, 2, result.Received)
	require.Equal(t, 2, result.Inserted)
	require.Equal(t, 0, result.Duplicates)

	stored := repo.inserted[0]
	require.NotEqual(t, uuid.Nil, stored[0].ID)
	require.Equal(t, 1, stored[0].Quantity)
}

func TestIngestBatchRejectsInvalidBarcode(t *testing.T) {
	svc, err := NewService(&fakeRepo{}, nil)
	require.NoError(t, err)

	_, err = svc.IngestBatch(context.Background(), []models.Scan{newScan("c-1", "abc")})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestIngestBatchDedupesRetriedDelivery(t *testing.T) {
	repo := &fakeRepo{}
	manager, err := idempotency.NewManager(newFakeStore(), time.Hour)
	require.NoError(t, err)
	svc, err := NewService(repo, manager)
	require.NoError(t, err)

	batch := []models.Scan{
		newScan("c-1", "400000000001"),
		newScan("c-2", "400000000002"),
	}

	first, err := svc.IngestBatch(context.Background(), batch)
	require.NoError(t, err)
	require.Equal(t, 2, first.Inserted)

	// the retry delivers the same tokens again
	retry, err := svc.IngestBatch(context.Background(), batch)
	require.NoError(t, err)
	require.Equal(t, 0, retry.Inserted)
	require.Equal(t, 2, retry.Duplicates)
}

func TestIngestBatchReleasesMarkersOnPersistFailure(t *testing.T) {
	repo := &fakeRepo{failNext: true}
	manager, err := idempotency.NewManager(newFakeStore(), time.Hour)
	require.NoError(t, err)
	svc, err := NewService(repo, manager)
	require.NoError(t, err)

	batch := []models.Scan{newScan("c-1", "400000000001")}

	_, err = svc.IngestBatch(context.Background(), batch)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodePersistence, typed.Code())

	// the retry must not be treated as a duplicate
	result, err := svc.IngestBatch(context.Background(), batch)
	require.NoError(t, err)
	require.Equal(t, 1, result.Inserted)
	require.Equal(t, 0, result.Duplicates)
}

func TestIsValidBarcode(t *testing.T) {
	cases := []struct {
		value string
		ok    bool
	}{
		{"4000000000001", false}, // 13 digits
		{"400000000001", true},   // 12 digits
		{"4000000001", true},     // 10 digits
		{"400000001", false},     // 9 digits
		{" 400000000001 ", true},
		{"40000000000a", false},
		{strings.Repeat("1", 11), true},
	}
	for _, tc := range cases {
		if got := IsValidBarcode(tc.value); got != tc.ok {
			t.Errorf("IsValidBarcode(%q) = %v, want %v", tc.value, got, tc.ok)
		}
	}
}
