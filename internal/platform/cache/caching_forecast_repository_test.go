package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"stock_forecast/internal/feature/forecast/domain"
	"stock_forecast/internal/feature/forecast/domain/entity"
)

// mockForecastRepository はテスト用のForecastRepositoryモック実装です。
type mockForecastRepository struct {
	saveFn            func(ctx context.Context, m entity.ModelMetrics, ps []entity.PricePrediction) error
	findMetricsFn     func(ctx context.Context, ticker string) (*entity.ModelMetrics, error)
	listPredictionsFn func(ctx context.Context, ticker string) ([]entity.PricePrediction, error)
}

func (m *mockForecastRepository) Save(ctx context.Context, metrics entity.ModelMetrics, ps []entity.PricePrediction) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, metrics, ps)
	}
	return nil
}

func (m *mockForecastRepository) FindMetrics(ctx context.Context, ticker string) (*entity.ModelMetrics, error) {
	if m.findMetricsFn != nil {
		return m.findMetricsFn(ctx, ticker)
	}
	return nil, domain.ErrModelNotFound
}

func (m *mockForecastRepository) ListPredictions(ctx context.Context, ticker string) ([]entity.PricePrediction, error) {
	if m.listPredictionsFn != nil {
		return m.listPredictionsFn(ctx, ticker)
	}
	return []entity.PricePrediction{}, nil
}

var (
	fixedNow = time.Date(2026, 10, 18, 15, 30, 0, 0, time.UTC)
	// fixedNowから次のUTC午前0時まで
	fixedTTL = 8*time.Hour + 30*time.Minute
)

const (
	versionKey = "forecast:version:TCS.NS"
	metricsV1  = "forecast:metrics:TCS.NS:v1"
	predsV1    = "forecast:predictions:TCS.NS:v1"
	predsV2    = "forecast:predictions:TCS.NS:v2"
)

func newTestRepo(t *testing.T, inner *mockForecastRepository) (*CachingForecastRepository, redismock.ClientMock) {
	t.Helper()
	rdb, mock := redismock.NewClientMock()
	t.Cleanup(func() { _ = rdb.Close() })

	repo := NewCachingForecastRepository(rdb, inner, "", nil)
	repo.now = func() time.Time { return fixedNow }
	repo.newToken = func() string { return "v2" }
	return repo, mock
}

// ctxRecordingClient はSETに渡されたコンテキストの状態を記録します。
type ctxRecordingClient struct {
	redis.Cmdable
	setCalled bool
	setCtxErr error
}

func (c *ctxRecordingClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	c.setCalled = true
	c.setCtxErr = ctx.Err()
	return c.Cmdable.Set(ctx, key, value, expiration)
}

func sampleMetrics() *entity.ModelMetrics {
	return &entity.ModelMetrics{
		Ticker:                  "TCS.NS",
		MeanAbsoluteError:       35,
		MeanSquaredError:        1500,
		RootMeanSquaredError:    38.7298,
		ModelArtifactPath:       "/models/TCS.NS_model.h5",
		TrainingDurationSeconds: 45,
		LastTrainedAt:           fixedNow,
	}
}

func samplePredictions() []entity.PricePrediction {
	return []entity.PricePrediction{
		{Ticker: "TCS.NS", Date: time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), Open: 2040, High: 2060.4, Low: 1983.52, Close: 2024},
	}
}

func TestNewCachingForecastRepository_Defaults(t *testing.T) {
	t.Parallel()

	repo := NewCachingForecastRepository(nil, &mockForecastRepository{}, "", nil)
	assert.Equal(t, "forecast", repo.namespace)
	assert.Equal(t, time.UTC, repo.loc)

	custom := NewCachingForecastRepository(nil, &mockForecastRepository{}, "fc", time.Local)
	assert.Equal(t, "fc", custom.namespace)
	assert.Equal(t, time.Local, custom.loc)
}

// TestCachingForecastRepository_NilRedis はRedis未設定時にキャッシュをバイパスすることを検証します。
func TestCachingForecastRepository_NilRedis(t *testing.T) {
	t.Parallel()

	calls := 0
	inner := &mockForecastRepository{
		listPredictionsFn: func(ctx context.Context, ticker string) ([]entity.PricePrediction, error) {
			calls++
			return samplePredictions(), nil
		},
	}
	repo := NewCachingForecastRepository(nil, inner, "", nil)

	for i := 0; i < 2; i++ {
		got, err := repo.ListPredictions(context.Background(), "TCS.NS")
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	assert.Equal(t, 2, calls)
	require.NoError(t, repo.Save(context.Background(), *sampleMetrics(), samplePredictions()))
}

// TestCachingForecastRepository_FindMetrics_CacheHit はキャッシュヒット時に内部リポジトリを呼ばないことを検証します。
func TestCachingForecastRepository_FindMetrics_CacheHit(t *testing.T) {
	t.Parallel()

	inner := &mockForecastRepository{
		findMetricsFn: func(ctx context.Context, ticker string) (*entity.ModelMetrics, error) {
			t.Error("inner repository should not be called on cache hit")
			return nil, nil
		},
	}
	repo, mock := newTestRepo(t, inner)

	b, _ := json.Marshal(sampleMetrics())
	mock.ExpectGet(versionKey).SetVal("v1")
	mock.ExpectGet(metricsV1).SetVal(string(b))

	got, err := repo.FindMetrics(context.Background(), "TCS.NS")
	require.NoError(t, err)
	assert.Equal(t, 35.0, got.MeanAbsoluteError)
	assert.True(t, fixedNow.Equal(got.LastTrainedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingForecastRepository_FindMetrics_CacheMiss はキャッシュミス時に次の午前0時までキャッシュすることを検証します。
func TestCachingForecastRepository_FindMetrics_CacheMiss(t *testing.T) {
	t.Parallel()

	inner := &mockForecastRepository{
		findMetricsFn: func(ctx context.Context, ticker string) (*entity.ModelMetrics, error) {
			return sampleMetrics(), nil
		},
	}
	repo, mock := newTestRepo(t, inner)

	b, _ := json.Marshal(sampleMetrics())
	mock.ExpectGet(versionKey).SetVal("v1")
	mock.ExpectGet(metricsV1).RedisNil()
	mock.ExpectSet(metricsV1, b, fixedTTL).SetVal("OK")

	got, err := repo.FindMetrics(context.Background(), "TCS.NS")
	require.NoError(t, err)
	assert.Equal(t, "TCS.NS", got.Ticker)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingForecastRepository_FindMetrics_NotFound は未学習の結果をキャッシュしないことを検証します。
func TestCachingForecastRepository_FindMetrics_NotFound(t *testing.T) {
	t.Parallel()

	repo, mock := newTestRepo(t, &mockForecastRepository{})
	mock.ExpectGet("forecast:version:NEWTICKER").SetVal("v1")
	mock.ExpectGet("forecast:metrics:NEWTICKER:v1").RedisNil()

	_, err := repo.FindMetrics(context.Background(), "NEWTICKER")
	assert.ErrorIs(t, err, domain.ErrModelNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingForecastRepository_Version_CreatedOnFirstRead はバージョン未作成時に新しいトークンを作ることを検証します。
func TestCachingForecastRepository_Version_CreatedOnFirstRead(t *testing.T) {
	t.Parallel()

	inner := &mockForecastRepository{
		listPredictionsFn: func(ctx context.Context, ticker string) ([]entity.PricePrediction, error) {
			return samplePredictions(), nil
		},
	}
	repo, mock := newTestRepo(t, inner)

	b, _ := json.Marshal(samplePredictions())
	mock.ExpectGet(versionKey).RedisNil()
	mock.ExpectSetNX(versionKey, "v2", 0).SetVal(true)
	mock.ExpectGet(predsV2).RedisNil()
	mock.ExpectSet(predsV2, b, fixedTTL).SetVal("OK")

	got, err := repo.ListPredictions(context.Background(), "TCS.NS")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingForecastRepository_Version_ConcurrentCreate は同時作成時に先に書かれたトークンを使うことを検証します。
func TestCachingForecastRepository_Version_ConcurrentCreate(t *testing.T) {
	t.Parallel()

	inner := &mockForecastRepository{
		listPredictionsFn: func(ctx context.Context, ticker string) ([]entity.PricePrediction, error) {
			return samplePredictions(), nil
		},
	}
	repo, mock := newTestRepo(t, inner)

	b, _ := json.Marshal(samplePredictions())
	mock.ExpectGet(versionKey).RedisNil()
	mock.ExpectSetNX(versionKey, "v2", 0).SetVal(false)
	mock.ExpectGet(versionKey).SetVal("v1")
	mock.ExpectGet(predsV1).RedisNil()
	mock.ExpectSet(predsV1, b, fixedTTL).SetVal("OK")

	_, err := repo.ListPredictions(context.Background(), "TCS.NS")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingForecastRepository_RedisDown はRedis障害時にDBから直接読むことを検証します。
func TestCachingForecastRepository_RedisDown(t *testing.T) {
	t.Parallel()

	calls := 0
	inner := &mockForecastRepository{
		listPredictionsFn: func(ctx context.Context, ticker string) ([]entity.PricePrediction, error) {
			calls++
			return samplePredictions(), nil
		},
	}
	repo, mock := newTestRepo(t, inner)
	mock.ExpectGet(versionKey).SetErr(errors.New("connection refused"))

	got, err := repo.ListPredictions(context.Background(), "TCS.NS")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingForecastRepository_ListPredictions_Corrupted は壊れたキャッシュを削除してDBから取得することを検証します。
func TestCachingForecastRepository_ListPredictions_Corrupted(t *testing.T) {
	t.Parallel()

	inner := &mockForecastRepository{
		listPredictionsFn: func(ctx context.Context, ticker string) ([]entity.PricePrediction, error) {
			return samplePredictions(), nil
		},
	}
	repo, mock := newTestRepo(t, inner)

	b, _ := json.Marshal(samplePredictions())
	mock.ExpectGet(versionKey).SetVal("v1")
	mock.ExpectGet(predsV1).SetVal("{not json")
	mock.ExpectDel(predsV1).SetVal(1)
	mock.ExpectSet(predsV1, b, fixedTTL).SetVal("OK")

	got, err := repo.ListPredictions(context.Background(), "TCS.NS")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2024.0, got[0].Close)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingForecastRepository_ListPredictions_EmptyNotCached は空の結果をキャッシュしないことを検証します。
func TestCachingForecastRepository_ListPredictions_EmptyNotCached(t *testing.T) {
	t.Parallel()

	repo, mock := newTestRepo(t, &mockForecastRepository{})
	mock.ExpectGet("forecast:version:NEWTICKER").SetVal("v1")
	mock.ExpectGet("forecast:predictions:NEWTICKER:v1").RedisNil()

	got, err := repo.ListPredictions(context.Background(), "NEWTICKER")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingForecastRepository_ListPredictions_InnerError は内部リポジトリのエラーが伝播されることを検証します。
func TestCachingForecastRepository_ListPredictions_InnerError(t *testing.T) {
	t.Parallel()

	expectedErr := errors.New("database error")
	inner := &mockForecastRepository{
		listPredictionsFn: func(ctx context.Context, ticker string) ([]entity.PricePrediction, error) {
			return nil, expectedErr
		},
	}
	repo, mock := newTestRepo(t, inner)
	mock.ExpectGet(versionKey).SetVal("v1")
	mock.ExpectGet(predsV1).RedisNil()

	_, err := repo.ListPredictions(context.Background(), "TCS.NS")
	assert.ErrorIs(t, err, expectedErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingForecastRepository_Save_RotatesVersion は保存後にティッカーのバージョンを更新することを検証します。
func TestCachingForecastRepository_Save_RotatesVersion(t *testing.T) {
	t.Parallel()

	saved := false
	inner := &mockForecastRepository{
		saveFn: func(ctx context.Context, m entity.ModelMetrics, ps []entity.PricePrediction) error {
			saved = true
			return nil
		},
	}
	repo, mock := newTestRepo(t, inner)
	mock.ExpectSet(versionKey, "v2", 0).SetVal("OK")

	require.NoError(t, repo.Save(context.Background(), *sampleMetrics(), samplePredictions()))
	assert.True(t, saved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingForecastRepository_Save_CanceledAfterCommit はコミット直後にリクエストが
// キャンセルされてもバージョン更新が有効なコンテキストで実行されることを検証します。
func TestCachingForecastRepository_Save_CanceledAfterCommit(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	inner := &mockForecastRepository{
		saveFn: func(ctx context.Context, m entity.ModelMetrics, ps []entity.PricePrediction) error {
			// クライアント切断
			cancel()
			return nil
		},
	}
	rdb, mock := redismock.NewClientMock()
	t.Cleanup(func() { _ = rdb.Close() })
	rec := &ctxRecordingClient{Cmdable: rdb}

	repo := NewCachingForecastRepository(rec, inner, "", nil)
	repo.newToken = func() string { return "v2" }
	mock.ExpectSet(versionKey, "v2", 0).SetVal("OK")

	require.NoError(t, repo.Save(ctx, *sampleMetrics(), samplePredictions()))
	require.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.True(t, rec.setCalled)
	assert.NoError(t, rec.setCtxErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingForecastRepository_ReadRacingSave は保存と競合した読み取りが古い予測を
// 書き戻しても、保存後の読み取りには新しい予測が返ることを検証します。
func TestCachingForecastRepository_ReadRacingSave(t *testing.T) {
	t.Parallel()

	oldPreds := []entity.PricePrediction{{Ticker: "TCS.NS", Date: time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), Open: 1, High: 1, Low: 1, Close: 1}}
	newPreds := []entity.PricePrediction{{Ticker: "TCS.NS", Date: time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), Open: 9, High: 9, Low: 9, Close: 9}}

	var repo *CachingForecastRepository
	calls := 0
	inner := &mockForecastRepository{
		listPredictionsFn: func(ctx context.Context, ticker string) ([]entity.PricePrediction, error) {
			calls++
			if calls == 1 {
				// DB読み取りの直後、書き戻しの前に再学習がコミットされる
				require.NoError(t, repo.Save(ctx, *sampleMetrics(), newPreds))
				return oldPreds, nil
			}
			return newPreds, nil
		},
	}
	repo, mock := newTestRepo(t, inner)

	oldJSON, _ := json.Marshal(oldPreds)
	newJSON, _ := json.Marshal(newPreds)
	mock.ExpectGet(versionKey).SetVal("v1")
	mock.ExpectGet(predsV1).RedisNil()
	mock.ExpectSet(versionKey, "v2", 0).SetVal("OK")
	// 古い予測は旧バージョンのキーにしか書かれない
	mock.ExpectSet(predsV1, oldJSON, fixedTTL).SetVal("OK")
	mock.ExpectGet(versionKey).SetVal("v2")
	mock.ExpectGet(predsV2).RedisNil()
	mock.ExpectSet(predsV2, newJSON, fixedTTL).SetVal("OK")

	_, err := repo.ListPredictions(context.Background(), "TCS.NS")
	require.NoError(t, err)

	got, err := repo.ListPredictions(context.Background(), "TCS.NS")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 9.0, got[0].Close)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingForecastRepository_Save_InvalidationFailure はバージョン更新の失敗をエラーログに残すことを検証します。
// グローバルロガーを差し替えるため並列実行しません。
func TestCachingForecastRepository_Save_InvalidationFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	repo, mock := newTestRepo(t, &mockForecastRepository{})
	mock.ExpectSet(versionKey, "v2", 0).SetErr(context.Canceled)

	// データはコミット済みのため保存自体は成功扱い
	assert.NoError(t, repo.Save(context.Background(), *sampleMetrics(), samplePredictions()))
	assert.NoError(t, mock.ExpectationsWereMet())

	entries := logs.FilterMessageSnippet("failed to invalidate forecast cache").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.ErrorLevel, entries[0].Level)
}

// TestCachingForecastRepository_Save_InnerError は保存失敗時にキャッシュを触らないことを検証します。
func TestCachingForecastRepository_Save_InnerError(t *testing.T) {
	t.Parallel()

	expectedErr := errors.New("tx aborted")
	inner := &mockForecastRepository{
		saveFn: func(ctx context.Context, m entity.ModelMetrics, ps []entity.PricePrediction) error {
			return expectedErr
		},
	}
	repo, mock := newTestRepo(t, inner)

	err := repo.Save(context.Background(), *sampleMetrics(), samplePredictions())
	assert.ErrorIs(t, err, expectedErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSafe(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "A_B_C", safe("A B:C"))
	assert.Equal(t, "M&M.NS", safe("M&M.NS"))
}
