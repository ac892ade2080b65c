package transfer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/David-Botos/s3-ingress/pkg/cleaner"
	"github.com/David-Botos/s3-ingress/pkg/connector"
	"github.com/David-Botos/s3-ingress/pkg/model"
	"github.com/David-Botos/s3-ingress/pkg/storage"
)

type fakeStore struct {
	objects map[string][]byte
	puts    int
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	data, ok := s.objects[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("file %s not found in bucket %s: %w", key, bucket, storage.ErrObjectNotFound)
	}
	return data, nil
}

func (s *fakeStore) PutObject(_ context.Context, bucket, key string, body []byte, _ string) error {
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	s.objects[bucket+"/"+key] = body
	return nil
}

type fakeWarehouse struct {
	requests    []connector.CopyRequest
	err         error
	loadedDelta int64
	hadDeadline bool
}

func (w *fakeWarehouse) Kind() string                   { return "Fake" }
func (w *fakeWarehouse) Validate(context.Context) error { return nil }
func (w *fakeWarehouse) Close() error                   { return nil }

func (w *fakeWarehouse) BulkCopy(ctx context.Context, req connector.CopyRequest) (*connector.CopyResult, error) {
	w.requests = append(w.requests, req)
	_, w.hadDeadline = ctx.Deadline()
	if w.err != nil {
		return nil, w.err
	}
	return &connector.CopyResult{
		Table:      req.Table,
		RowsLoaded: int64(req.RowsStaged) + w.loadedDelta,
	}, nil
}

const (
	rawBucket     = "e-commerce-raw"
	stagingBucket = "e-commerce-processed"
)

const customersCSV = "CustomerKey,Prefix,FirstName,LastNa,BirthDate,MaritalStatus,Gender,EmailAddress,AnnualIncome,TotalChildren,EducationLevel,Occupation,HomeOwner\n" +
	"11000,MR.,Jon1,Yang,4/8/1966,M,M,jon24@adventure-works.com,\"$90,000\",2,Bachelors,Professional,Y\n" +
	"11001,MrR,Eug3ene,Huang,5/14/1965,S,M,eugene10@adventure-works.com,\"$60,000\",3,Partial College,Skilled Manual!,N\n" +
	"11002,MS.,Jos\xe9,Torres,13/45/1965,M,F,no-at-sign,\"$60,000\",3,Bachelors,Professional,Y\n"

func newTestManager(t *testing.T, store *fakeStore, wh *fakeWarehouse, opts Options) *TransferManager {
	t.Helper()
	dc, err := cleaner.NewDataCleaner(zaptest.NewLogger(t), cleaner.ProfileBaseline)
	require.NoError(t, err)
	tm, err := NewTransferManager(store, wh, dc, opts, zaptest.NewLogger(t))
	require.NoError(t, err)
	return tm
}

func newJob(key string) LoadJob {
	return NewLoadJob(model.NewLoadTarget(rawBucket, key, stagingBucket, "", ""))
}

func TestTransfer_Customers(t *testing.T) {
	store := newFakeStore()
	store.objects[rawBucket+"/customers.csv"] = []byte(customersCSV)
	wh := &fakeWarehouse{}
	tm := newTestManager(t, store, wh, Options{})

	job := newJob("customers.csv")
	result, err := tm.Transfer(context.Background(), job)
	require.NoError(t, err)

	staged, ok := store.objects[stagingBucket+"/customers_processed.csv"]
	require.True(t, ok, "staged object missing")
	assert.Equal(t,
		"11000,MR.,Jon,Yang,1966-04-08,Married,M,adventure-works.com,\"$90,000\",2,College Degree,Professional,True\n"+
			"11001,MR,Eugene,Huang,1965-05-14,Single,M,adventure-works.com,\"$60,000\",3,College Degree,Skilled Manual,False\n"+
			"11002,MS.,José,Torres,1900-01-01,Married,F,,\"$60,000\",3,College Degree,Professional,True\n",
		string(staged))

	require.Len(t, wh.requests, 1)
	req := wh.requests[0]
	assert.Equal(t, "customers", req.Table)
	assert.Equal(t, "s3://e-commerce-processed/customers_processed.csv", req.StagingURI)
	assert.Equal(t, "s3://e-commerce-raw/customers.csv", req.SourceURI)
	assert.Equal(t, job.ID, req.RunID)
	assert.Equal(t, 3, req.RowsStaged)
	assert.Contains(t, req.CleanedColumns, "BirthDate")

	assert.True(t, result.Success)
	assert.Equal(t, "customers", result.Dataset)
	assert.Equal(t, int64(3), result.RowsRead)
	assert.Equal(t, int64(3), result.RowsStaged)
	assert.Equal(t, int64(3), result.RowsLoaded)
	assert.Equal(t, int64(len(customersCSV)), result.BytesRead)
	assert.Equal(t, int64(len(staged)), result.BytesStaged)
	assert.Positive(t, result.ValuesChanged)
	require.NotNil(t, result.Verification)
	assert.True(t, result.Verification.RowCountMatches)
	assert.Empty(t, result.Warnings)

	assert.Equal(t, []Stage{StageFetch, StageParse, StageClean, StageStage, StageLoad, StageVerify},
		result.Metrics.Stages())
}

func TestTransfer_UnknownFilePassesThrough(t *testing.T) {
	store := newFakeStore()
	store.objects[rawBucket+"/incoming/inventory.csv"] = []byte("Sku,Name\n001,\"Helmet, Red\"\n002,Bottle\n")
	wh := &fakeWarehouse{}
	tm := newTestManager(t, store, wh, Options{})

	result, err := tm.Transfer(context.Background(), newJob("incoming/inventory.csv"))
	require.NoError(t, err)

	assert.Equal(t, "001,\"Helmet, Red\"\n002,Bottle\n", string(store.objects[stagingBucket+"/inventory_processed.csv"]))
	require.Len(t, wh.requests, 1)
	assert.Equal(t, "inventory", wh.requests[0].Table)
	assert.Equal(t, "unknown", result.Dataset)
	assert.Zero(t, result.ValuesChanged)
}

func TestTransfer_NoOpDatasetUnchanged(t *testing.T) {
	input := "OrderDate,StockDate,OrderNumber,ProductKey,CustomerKey,TerritoryKey,OrderLineItem,OrderQuantity\n" +
		"1/1/2015,9/21/2001,SO45080,332,14657,1,1,1\n"
	store := newFakeStore()
	store.objects[rawBucket+"/sales_2015.csv"] = []byte(input)
	tm := newTestManager(t, store, &fakeWarehouse{}, Options{})

	_, err := tm.Transfer(context.Background(), newJob("sales_2015.csv"))
	require.NoError(t, err)

	assert.Equal(t, "1/1/2015,9/21/2001,SO45080,332,14657,1,1,1\n",
		string(store.objects[stagingBucket+"/sales_2015_processed.csv"]))
}

func TestTransfer_MissingObject(t *testing.T) {
	store := newFakeStore()
	wh := &fakeWarehouse{}
	tm := newTestManager(t, store, wh, Options{})

	result, err := tm.Transfer(context.Background(), newJob("customers.csv"))
	require.Error(t, err)

	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
	stage, ok := StageOf(err)
	require.True(t, ok)
	assert.Equal(t, StageFetch, stage)
	assert.False(t, result.Success)
	assert.Zero(t, store.puts)
	assert.Empty(t, wh.requests)
}

func TestTransfer_StageFailures(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		content   string
		putErr    error
		loadErr   error
		wantStage Stage
	}{
		{name: "directory key", key: "raw/", wantStage: StageFetch},
		{name: "empty file", key: "customers.csv", content: "", wantStage: StageParse},
		{name: "ragged row", key: "customers.csv", content: "a,b\n1\n", wantStage: StageParse},
		{name: "staging write fails", key: "customers.csv", content: customersCSV, putErr: errors.New("access denied"), wantStage: StageStage},
		{name: "copy fails", key: "customers.csv", content: customersCSV, loadErr: errors.New("relation does not exist"), wantStage: StageLoad},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.objects[rawBucket+"/"+tt.key] = []byte(tt.content)
			store.putErr = tt.putErr
			wh := &fakeWarehouse{err: tt.loadErr}
			tm := newTestManager(t, store, wh, Options{})

			result, err := tm.Transfer(context.Background(), newJob(tt.key))
			require.Error(t, err)

			var te *TransferError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.wantStage, te.Stage)
			assert.False(t, result.Success)

			if tt.wantStage < StageLoad {
				assert.Empty(t, wh.requests)
			}
		})
	}
}

func TestTransfer_VerifyMismatch(t *testing.T) {
	t.Run("enforced", func(t *testing.T) {
		store := newFakeStore()
		store.objects[rawBucket+"/customers.csv"] = []byte(customersCSV)
		tm := newTestManager(t, store, &fakeWarehouse{loadedDelta: -1}, Options{VerifyLoad: true})

		result, err := tm.Transfer(context.Background(), newJob("customers.csv"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRowCountMismatch)

		stage, _ := StageOf(err)
		assert.Equal(t, StageVerify, stage)
		require.NotNil(t, result.Verification)
		assert.False(t, result.Verification.RowCountMatches)
	})

	t.Run("warn only", func(t *testing.T) {
		store := newFakeStore()
		store.objects[rawBucket+"/customers.csv"] = []byte(customersCSV)
		tm := newTestManager(t, store, &fakeWarehouse{loadedDelta: -1}, Options{})

		result, err := tm.Transfer(context.Background(), newJob("customers.csv"))
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Len(t, result.Warnings, 1)
	})
}

func TestTransfer_LoadTimeout(t *testing.T) {
	store := newFakeStore()
	store.objects[rawBucket+"/customers.csv"] = []byte(customersCSV)
	wh := &fakeWarehouse{}
	tm := newTestManager(t, store, wh, Options{LoadTimeout: time.Minute})

	_, err := tm.Transfer(context.Background(), newJob("customers.csv"))
	require.NoError(t, err)
	assert.True(t, wh.hadDeadline)
}

func TestTransfer_MissingColumnsWarn(t *testing.T) {
	store := newFakeStore()
	store.objects[rawBucket+"/customers.csv"] = []byte("CustomerKey,BirthDate\nA-11000,1/2/1970\n")
	tm := newTestManager(t, store, &fakeWarehouse{}, Options{})

	result, err := tm.Transfer(context.Background(), newJob("customers.csv"))
	require.NoError(t, err)

	assert.Equal(t, "11000,1970-01-02,College Degree\n",
		string(store.objects[stagingBucket+"/customers_processed.csv"]))
	assert.NotEmpty(t, result.Warnings)
}

func TestNewTransferManager_Validation(t *testing.T) {
	logger := zaptest.NewLogger(t)
	dc, err := cleaner.NewDataCleaner(logger, cleaner.ProfileBaseline)
	require.NoError(t, err)

	_, err = NewTransferManager(nil, &fakeWarehouse{}, dc, Options{}, logger)
	assert.Error(t, err)
	_, err = NewTransferManager(newFakeStore(), nil, dc, Options{}, logger)
	assert.Error(t, err)
	_, err = NewTransferManager(newFakeStore(), &fakeWarehouse{}, nil, Options{}, logger)
	assert.Error(t, err)
	assert.NotPanics(t, func() {
		_, err = NewTransferManager(newFakeStore(), &fakeWarehouse{}, dc, Options{}, nil)
	})
	assert.EqualError(t, err, "logger cannot be nil")

	tm, err := NewTransferManager(newFakeStore(), &fakeWarehouse{}, dc, Options{}, logger)
	require.NoError(t, err)
	assert.NotNil(t, tm.opts.Encoding)
	assert.Equal(t, "Fake", tm.Warehouse().Kind())
}
