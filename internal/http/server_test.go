package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rohnsht/PhoneNumber/internal/catalog"
	"github.com/rohnsht/PhoneNumber/internal/model"
	"github.com/rohnsht/PhoneNumber/internal/phonenumber"
	"github.com/rohnsht/PhoneNumber/internal/registry"
	"github.com/rohnsht/PhoneNumber/internal/repository"
	"github.com/rohnsht/PhoneNumber/internal/service/phone"
	"github.com/rohnsht/PhoneNumber/internal/service/queue"
)

const testKey = "test-key"

type fakeClients struct{}

func (fakeClients) GetByAPIKey(_ context.Context, key string) (*model.Client, error) {
	if key != testKey {
		return nil, nil
	}
	return &model.Client{ID: 42, Name: "test", APIKey: key, Status: "active"}, nil
}

func (fakeClients) Upsert(context.Context, *sqlx.Tx, model.Client) error { return nil }

type fixedLocator struct {
	code string
	err  error
}

func (f fixedLocator) RegionCode(context.Context) (string, error) { return f.code, f.err }

type fakeQueue struct {
	enqueued [][]string
	jobs     map[string]model.Job
}

func (f *fakeQueue) Enqueue(_ context.Context, clientID int64, texts []string, region string) (string, error) {
	if len(texts) > 3 {
		return "", queue.ErrJobTooLarge
	}
	f.enqueued = append(f.enqueued, texts)
	return "01JOB", nil
}

func (f *fakeQueue) Get(_ context.Context, clientID int64, id string) (model.Job, error) {
	j, ok := f.jobs[id]
	if !ok || j.ClientID != clientID {
		return model.Job{}, repository.ErrJobNotFound
	}
	return j, nil
}

type fakeNumbers struct {
	lastClient int64
	lastFilter repository.NumbersFilter
	err        error
}

func (f *fakeNumbers) InsertBatch(context.Context, []model.NormalizedNumber) error { return nil }

func (f *fakeNumbers) ListByClient(_ context.Context, clientID int64, nf repository.NumbersFilter) ([]model.NormalizedNumber, error) {
	f.lastClient, f.lastFilter = clientID, nf
	if f.err != nil {
		return nil, f.err
	}
	return []model.NormalizedNumber{{JobID: "01JOB", ClientID: clientID, Input: "+14155552671", Valid: true}}, nil
}

type fixture struct {
	e       *echo.Echo
	queue   *fakeQueue
	numbers *fakeNumbers
}

func newFixture(t *testing.T, loc phone.RegionLocator) *fixture {
	t.Helper()
	reg, err := registry.Load("")
	require.NoError(t, err)

	svc := phone.New(
		phonenumber.New(reg),
		catalog.New(reg, catalog.CLDRNamer{}, "en", zap.NewNop()),
		loc,
		zap.NewNop(),
	)
	f := &fixture{
		queue: &fakeQueue{jobs: map[string]model.Job{
			"01DONE": {
				ID:        "01DONE",
				ClientID:  42,
				Status:    model.JobDone,
				Total:     2,
				Valid:     1,
				CreatedAt: time.Unix(0, 0).UTC(),
				UpdatedAt: time.Unix(0, 0).UTC(),
			},
			"01OTHER": {ID: "01OTHER", ClientID: 7, Status: model.JobQueued},
		}},
		numbers: &fakeNumbers{},
	}
	f.e = newEcho(Deps{
		Phone:   svc,
		Jobs:    f.queue,
		Numbers: f.numbers,
		Clients: fakeClients{},
		Log:     zap.NewNop(),
	})
	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("X-API-Key", testKey)
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRequiresAPIKey(t *testing.T) {
	f := newFixture(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/parse", strings.NewReader(`{"string":"+14155552671"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestParseEndpoint(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/v1/parse", `{"string":"(415) 555-2671","region":"US"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"type": "fixedOrMobile",
		"e164": "+14155552671",
		"international": "+1 415-555-2671",
		"national": "(415) 555-2671",
		"country_code": "1",
		"region_code": "US",
		"national_number": "4155552671"
	}`, rec.Body.String())

	rec = f.do(http.MethodPost, "/v1/parse", `{"string":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"InvalidParameters"`)

	rec = f.do(http.MethodPost, "/v1/parse", `{"string":"abc","region":"US"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"InvalidNumber"`)

	rec = f.do(http.MethodPost, "/v1/parse", `{"string":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseListEndpoint(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/v1/parse-list", `{"strings":["+14155552671","abc","+14155552671"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]*model.ParseResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Nil(t, got["abc"])
	require.NotNil(t, got["+14155552671"])
	assert.Equal(t, "+14155552671", got["+14155552671"].E164)

	rec = f.do(http.MethodPost, "/v1/parse-list", `{"strings":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFormatEndpoint(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/v1/format", `{"string":"4155552671","region":"US"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"formatted":"(415) 555-2671"}`, rec.Body.String())

	rec = f.do(http.MethodPost, "/v1/format", `{"string":"4155552671","region":"ZZ"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestValidateEndpoint(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/v1/validate", `{"string":"+14155552671","region":"US"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"isValid":true}`, rec.Body.String())

	rec = f.do(http.MethodPost, "/v1/validate", `{"string":"123","region":"US"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"isValid":false}`, rec.Body.String())
}

func TestRegionsEndpoint(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/v1/regions?locale=de", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var regions []catalog.Region
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &regions))
	assert.Contains(t, regions, catalog.Region{Name: "Deutschland", Code: "DE", Prefix: 49})
}

func TestCarrierRegionEndpoint(t *testing.T) {
	f := newFixture(t, fixedLocator{code: "np"})
	rec := f.do(http.MethodGet, "/v1/carrier-region", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"region_code":"np"}`, rec.Body.String())

	f = newFixture(t, fixedLocator{err: errors.New("no modem")})
	rec = f.do(http.MethodGet, "/v1/carrier-region", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestJobsEndpoints(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/v1/jobs", `{"strings":["+14155552671","abc"],"region":"us"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"id":"01JOB","status":"queued","total":2}`, rec.Body.String())
	require.Len(t, f.queue.enqueued, 1)

	rec = f.do(http.MethodPost, "/v1/jobs", `{"strings":["1","2","3","4"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/v1/jobs/01DONE", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var job model.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, model.JobDone, job.Status)
	assert.Equal(t, 1, job.Valid)

	rec = f.do(http.MethodGet, "/v1/jobs/01OTHER", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListNumbersEndpoint(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/v1/reports/numbers?job_id=01JOB&region=us&type=MOBILE&valid=true&limit=5000&offset=10", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, int64(42), f.numbers.lastClient)
	nf := f.numbers.lastFilter
	assert.Equal(t, "01JOB", nf.JobID)
	assert.Equal(t, "US", nf.Region)
	assert.Equal(t, "mobile", nf.Type)
	require.NotNil(t, nf.Valid)
	assert.True(t, *nf.Valid)
	assert.Equal(t, 50, nf.Limit)
	assert.Equal(t, 10, nf.Offset)

	f.numbers.err = errors.New("clickhouse down")
	rec = f.do(http.MethodGet, "/v1/reports/numbers", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
