package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taxfolio/backend/internal/adapter/repository/memory"
	"github.com/taxfolio/backend/internal/usecase/auditrisk"
	"github.com/taxfolio/backend/internal/usecase/investment"
	"github.com/taxfolio/backend/internal/usecase/liability"
	"github.com/taxfolio/backend/internal/usecase/summary"
	"github.com/taxfolio/backend/internal/usecase/taxcalc"
	"github.com/taxfolio/backend/internal/usecase/taxconfig"
	"github.com/taxfolio/backend/internal/usecase/valuation"
)

const testToken = "test-token"

func newTestServer() *Server {
	store := memory.New()
	cfg := taxconfig.NewResolver()
	deriver := investment.NewDeriver()
	calc := taxcalc.NewCalculator(cfg, deriver)
	risk := auditrisk.NewEngine(cfg, deriver, calc)
	logger := zap.NewNop()

	normalizer := valuation.NewNormalizer(store.Assets(), cfg, logger).
		WithClock(func() time.Time {
			return time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)
		})
	summarySvc := summary.NewSummaryService(store.Assets(), store.Liabilities(), normalizer)
	liabilitySvc := liability.NewLiabilityService(store.Liabilities())

	repos := Repositories{
		Entities:     store.Entities(),
		Assets:       store.Assets(),
		Liabilities:  store.Liabilities(),
		Incomes:      store.Incomes(),
		Certificates: store.Certificates(),
	}
	return New(repos, calc, risk, deriver, normalizer, summarySvc, liabilitySvc, testToken, logger)
}

func doRequest(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func createEntity(t *testing.T, srv *Server, name string) string {
	t.Helper()
	rec := doRequest(t, srv, http.MethodPost, "/v1/entities", map[string]any{
		"name":         name,
		"nic":          "853421234V",
		"type":         "INDIVIDUAL",
		"firstTaxYear": "2020/21",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]any
	decodeBody(t, rec, &resp)
	return resp["id"].(string)
}

func TestAuthentication(t *testing.T) {
	srv := newTestServer()

	t.Run("health endpoints are public", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/entities", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/entities", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestEntityEndpoints(t *testing.T) {
	srv := newTestServer()

	id := createEntity(t, srv, "W. Perera")

	rec := doRequest(t, srv, http.MethodGet, "/v1/entities/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var entity map[string]any
	decodeBody(t, rec, &entity)
	assert.Equal(t, "W. Perera", entity["name"])
	assert.Equal(t, "2020/21", entity["firstTaxYear"])

	rec = doRequest(t, srv, http.MethodGet, "/v1/entities", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	decodeBody(t, rec, &list)
	assert.Len(t, list, 1)

	t.Run("invalid type is unprocessable", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/v1/entities", map[string]any{
			"name":         "Bad",
			"type":         "ALIEN",
			"firstTaxYear": "2020",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/v1/entities/00000000-0000-0000-0000-000000000001", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAssetEndpoints(t *testing.T) {
	srv := newTestServer()
	owner := createEntity(t, srv, "W. Perera")

	rec := doRequest(t, srv, http.MethodPost, "/v1/assets", map[string]any{
		"ownerId":         owner,
		"name":            "NSB savings",
		"category":        "BANK_DEPOSIT",
		"acquisitionDate": "2019-06-01",
		"cost":            "100000",
		"balances": []map[string]any{
			{"taxYear": "2023/24", "closingBalance": "500000", "interestEarned": "40000", "whtDeducted": "2000"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var asset map[string]any
	decodeBody(t, rec, &asset)
	assetID := asset["id"].(string)

	t.Run("get by id", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/v1/assets/"+assetID, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("list by owner", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/v1/assets?owner="+owner, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		var list []map[string]any
		decodeBody(t, rec, &list)
		assert.Len(t, list, 1)
	})

	t.Run("resolved value uses the closing balance", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/v1/assets/"+assetID+"/value?year=2023", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		var value map[string]string
		decodeBody(t, rec, &value)
		assert.Equal(t, "500000", value["value"])
		assert.Equal(t, "2023/24", value["taxYear"])
	})

	t.Run("record a valuation", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/v1/assets/"+assetID+"/valuations", map[string]any{
			"taxYear": "2022/23",
			"value":   "450000",
			"source":  "bank statement",
		})
		assert.Equal(t, http.StatusCreated, rec.Code)

		// One appraisal per year.
		rec = doRequest(t, srv, http.MethodPost, "/v1/assets/"+assetID+"/valuations", map[string]any{
			"taxYear": "2022/23",
			"value":   "460000",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("joint shares must sum to 100", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/v1/assets", map[string]any{
			"name":            "broken joint",
			"category":        "BANK_DEPOSIT",
			"acquisitionDate": "2019-06-01",
			"cost":            "0",
			"ownershipShares": []map[string]any{
				{"entityId": owner, "percentage": "60"},
			},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestLiabilityEndpoints(t *testing.T) {
	srv := newTestServer()
	owner := createEntity(t, srv, "W. Perera")

	rec := doRequest(t, srv, http.MethodPost, "/v1/liabilities", map[string]any{
		"ownerId":        owner,
		"lender":         "BOC housing loan",
		"originalAmount": "5000000",
		"dateAcquired":   "2021-07-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]any
	decodeBody(t, rec, &created)
	liabilityID := created["id"].(string)
	assert.Equal(t, "5000000", created["currentBalance"])

	t.Run("record a payment", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/v1/liabilities/"+liabilityID+"/payments", map[string]any{
			"taxYear":       "2022/23",
			"principalPaid": "400000",
			"interestPaid":  "350000",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		var updated map[string]any
		decodeBody(t, rec, &updated)
		assert.Equal(t, "4600000", updated["currentBalance"])
	})

	t.Run("duplicate year conflicts", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/v1/liabilities/"+liabilityID+"/payments", map[string]any{
			"taxYear":       "2022/23",
			"principalPaid": "100000",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("delete a missing year", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodDelete, "/v1/liabilities/"+liabilityID+"/payments/2020", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete the recorded year", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodDelete, "/v1/liabilities/"+liabilityID+"/payments/2022", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var updated map[string]any
		decodeBody(t, rec, &updated)
		assert.Equal(t, "5000000", updated["currentBalance"])
	})
}

func TestIncomeAndTaxEndpoints(t *testing.T) {
	srv := newTestServer()
	owner := createEntity(t, srv, "W. Perera")

	rec := doRequest(t, srv, http.MethodPost, "/v1/incomes", map[string]any{
		"ownerId":  owner,
		"taxYear":  "2023/24",
		"schedule": 1,
		"employment": map[string]any{
			"employer":     "Acme Lanka (Pvt) Ltd",
			"grossAmount":  "2000000",
			"apitWithheld": "60000",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("stored incomes list by owner and year", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/v1/incomes?owner="+owner+"&year=2023", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		var list []map[string]any
		decodeBody(t, rec, &list)
		assert.Len(t, list, 1)
	})

	t.Run("schedule 3 cannot be hand-entered", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/v1/incomes", map[string]any{
			"ownerId":  owner,
			"taxYear":  "2023/24",
			"schedule": 3,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("tax computation under the statutory table", func(t *testing.T) {
		// 2023/24: relief 1,200,000, then 500,000 slabs at 6% and 12%.
		rec := doRequest(t, srv, http.MethodGet, "/v1/entities/"+owner+"/tax?year=2023", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var comp map[string]any
		decodeBody(t, rec, &comp)
		assert.Equal(t, "2000000", comp["assessableIncome"])
		assert.Equal(t, "1200000", comp["personalRelief"])
		assert.Equal(t, "800000", comp["taxableIncome"])
		assert.Equal(t, "66000", comp["taxOnIncome"])
		assert.Equal(t, "60000", comp["apitCredit"])
		assert.Equal(t, "6000", comp["taxPayable"])
	})

	t.Run("year before first filing is rejected", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/v1/entities/"+owner+"/tax?year=2018", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("missing year parameter", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/v1/entities/"+owner+"/tax", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("csv export", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/v1/entities/"+owner+"/tax/export?year=2023&format=csv", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "tax-computation-2023.csv")
		assert.Contains(t, rec.Body.String(), "Tax Payable,6000.00")
	})
}

func TestAuditRiskAndFamilyEndpoints(t *testing.T) {
	srv := newTestServer()
	owner := createEntity(t, srv, "W. Perera")

	// Income well above the year's balance growth keeps the entity safe.
	rec := doRequest(t, srv, http.MethodPost, "/v1/incomes", map[string]any{
		"ownerId":  owner,
		"taxYear":  "2023/24",
		"schedule": 1,
		"employment": map[string]any{
			"employer":    "Acme Lanka (Pvt) Ltd",
			"grossAmount": "2400000",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/v1/assets", map[string]any{
		"ownerId":         owner,
		"name":            "NSB savings",
		"category":        "BANK_DEPOSIT",
		"acquisitionDate": "2019-06-01",
		"cost":            "100000",
		"balances": []map[string]any{
			{"taxYear": "2022/23", "closingBalance": "500000"},
			{"taxYear": "2023/24", "closingBalance": "800000"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("entity audit risk", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/v1/entities/"+owner+"/audit-risk?year=2023", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var risk map[string]any
		decodeBody(t, rec, &risk)
		assert.Equal(t, "SAFE", risk["riskLevel"])
		assert.Equal(t, "-2100000", risk["riskScore"])
		assert.Equal(t, "2100000", risk["derivedLivingExpenses"])
	})

	t.Run("family audit risk", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/v1/family/audit-risk?year=2023", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var risk map[string]any
		decodeBody(t, rec, &risk)
		assert.Equal(t, "SAFE", risk["riskLevel"])
	})

	t.Run("family net worth", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/v1/family/net-worth?year=2023", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var nw map[string]any
		decodeBody(t, rec, &nw)
		assert.Equal(t, "800000", nw["totalAssets"])
	})

	t.Run("family checklist flags the missing year", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/v1/family/checklist?year=2024", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var tasks []map[string]any
		decodeBody(t, rec, &tasks)
		require.Len(t, tasks, 1)
		assert.Equal(t, "RECORD_YEARLY_BALANCE", tasks[0]["kind"])
	})
}

func TestInvestmentIncomeEndpoint(t *testing.T) {
	srv := newTestServer()
	owner := createEntity(t, srv, "W. Perera")

	rec := doRequest(t, srv, http.MethodPost, "/v1/assets", map[string]any{
		"ownerId":         owner,
		"name":            "fixed deposit",
		"category":        "BANK_DEPOSIT",
		"acquisitionDate": "2019-06-01",
		"cost":            "1000000",
		"balances": []map[string]any{
			{"taxYear": "2023/24", "closingBalance": "1000000", "interestEarned": "120000", "whtDeducted": "6000"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/v1/entities/"+owner+"/investment-income?year=2023", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var derived []map[string]any
	decodeBody(t, rec, &derived)
	require.Len(t, derived, 1)
	assert.Equal(t, float64(3), derived[0]["schedule"])
	investmentDetail := derived[0]["investment"].(map[string]any)
	assert.Equal(t, "120000", investmentDetail["grossAmount"])
	assert.Equal(t, "6000", investmentDetail["whtDeducted"])
}
