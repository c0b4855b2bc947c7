//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	baseURL  string
	apiToken string
	client   *http.Client
)

// TestMain verifies the server under test is reachable before any scenario runs
func TestMain(m *testing.M) {
	baseURL = getAPIAddress()
	apiToken = getAPIToken()
	client = &http.Client{}

	// 1. Wait for readiness
	resp, err := http.Get(baseURL + "/readyz")
	if err != nil {
		panic(fmt.Sprintf("Failed to reach server at %s: %v", baseURL, err))
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		panic(fmt.Sprintf("Server not ready: status %d", resp.StatusCode))
	}

	code := m.Run()

	os.Exit(code)
}

// getAPIAddress returns the HTTP server address from environment or defaults
func getAPIAddress() string {
	addr := os.Getenv("API_ADDRESS")
	if addr == "" {
		addr = "http://localhost:8080"
	}
	return addr
}

// getAPIToken returns the bearer token from environment or defaults
func getAPIToken() string {
	token := os.Getenv("API_TOKEN")
	if token == "" {
		token = "dev-token"
	}
	return token
}

// call sends an authenticated JSON request and decodes the response body into out
func call(t *testing.T, method, path string, body any, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, baseURL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	require.NoError(t, err, "Request %s %s should reach the server", method, path)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func amount(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

// TestEndToEndFlow walks one filing year: register an entity, record income,
// assets and a loan, then read back the tax computation and audit risk.
func TestEndToEndFlow(t *testing.T) {
	// Step A: Register the taxpayer
	var entity map[string]any
	status := call(t, http.MethodPost, "/v1/entities", map[string]any{
		"name":         "E2E Taxpayer",
		"nic":          "881234567V",
		"type":         "INDIVIDUAL",
		"firstTaxYear": "2021/22",
	}, &entity)
	require.Equal(t, http.StatusCreated, status, "Entity creation should succeed")
	entityID := entity["id"].(string)
	require.NotEmpty(t, entityID, "Entity ID should be returned")

	// Step B: Record employment income for 2023/24
	var income map[string]any
	status = call(t, http.MethodPost, "/v1/incomes", map[string]any{
		"ownerId":  entityID,
		"taxYear":  "2023/24",
		"schedule": 1,
		"employment": map[string]any{
			"employer":     "E2E Employer (Pvt) Ltd",
			"grossAmount":  "3000000",
			"apitWithheld": "150000",
		},
	}, &income)
	require.Equal(t, http.StatusCreated, status, "Income creation should succeed")

	// Step C: Record a savings account with two years of balances
	var asset map[string]any
	status = call(t, http.MethodPost, "/v1/assets", map[string]any{
		"ownerId":         entityID,
		"name":            "E2E savings",
		"category":        "BANK_DEPOSIT",
		"acquisitionDate": "2021-05-01",
		"cost":            "200000",
		"balances": []map[string]any{
			{"taxYear": "2022/23", "closingBalance": "700000"},
			{"taxYear": "2023/24", "closingBalance": "1000000", "interestEarned": "90000", "whtDeducted": "4500"},
		},
	}, &asset)
	require.Equal(t, http.StatusCreated, status, "Asset creation should succeed")
	assetID := asset["id"].(string)

	// Step D: Record a loan and one year of payments
	var loan map[string]any
	status = call(t, http.MethodPost, "/v1/liabilities", map[string]any{
		"ownerId":        entityID,
		"lender":         "E2E Bank housing loan",
		"originalAmount": "4000000",
		"dateAcquired":   "2022-06-01",
	}, &loan)
	require.Equal(t, http.StatusCreated, status, "Liability creation should succeed")
	loanID := loan["id"].(string)

	status = call(t, http.MethodPost, "/v1/liabilities/"+loanID+"/payments", map[string]any{
		"taxYear":       "2023/24",
		"principalPaid": "300000",
		"interestPaid":  "250000",
	}, &loan)
	require.Equal(t, http.StatusCreated, status, "Payment recording should succeed")
	assert.Equal(t, "3700000", loan["currentBalance"], "Balance should drop by the principal paid")

	// Step E: Derived schedule 3 income should surface the bank interest
	var derived []map[string]any
	status = call(t, http.MethodGet, "/v1/entities/"+entityID+"/investment-income?year=2023", nil, &derived)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, derived, 1, "One derived interest record expected")
	detail := derived[0]["investment"].(map[string]any)
	assert.True(t, amount(t, detail["grossAmount"].(string)).Equal(amount(t, "90000")),
		"Derived gross should match the recorded interest")

	// Step F: Tax computation for 2023/24 under the statutory table.
	// Assessable 3,090,000; relief 1,200,000; taxable 1,890,000.
	var comp map[string]any
	status = call(t, http.MethodGet, "/v1/entities/"+entityID+"/tax?year=2023", nil, &comp)
	require.Equal(t, http.StatusOK, status, "Tax computation should succeed")
	assert.True(t, amount(t, comp["assessableIncome"].(string)).Equal(amount(t, "3090000")))
	assert.True(t, amount(t, comp["taxableIncome"].(string)).Equal(amount(t, "1890000")))
	// Slabs: 500k at 6% + 500k at 12% + 500k at 18% + 390k at 24% = 273,600
	assert.True(t, amount(t, comp["taxOnIncome"].(string)).Equal(amount(t, "273600")))
	assert.True(t, amount(t, comp["apitCredit"].(string)).Equal(amount(t, "150000")))
	assert.True(t, amount(t, comp["whtCredit"].(string)).Equal(amount(t, "4500")))
	assert.True(t, amount(t, comp["taxPayable"].(string)).Equal(amount(t, "119100")))

	// Step G: Audit risk should land on the safe side.
	// Inflows 3,090,000 against deposits growth 300,000, tax withheld and
	// loan servicing leave a large derived living allowance.
	var risk map[string]any
	status = call(t, http.MethodGet, "/v1/entities/"+entityID+"/audit-risk?year=2023", nil, &risk)
	require.Equal(t, http.StatusOK, status, "Audit risk should succeed")
	assert.Equal(t, "SAFE", risk["riskLevel"])
	score := amount(t, risk["riskScore"].(string))
	assert.True(t, score.IsNegative(), "Declared income should exceed observed uses")

	// Step H: The record checklist for the next year flags the missing balance
	var tasks []map[string]any
	status = call(t, http.MethodGet, "/v1/family/checklist?year=2024", nil, &tasks)
	require.Equal(t, http.StatusOK, status)
	found := false
	for _, task := range tasks {
		if task["assetId"] == assetID && task["kind"] == "RECORD_YEARLY_BALANCE" {
			found = true
		}
	}
	assert.True(t, found, "Checklist should ask for the 2024/25 closing balance")

	// Step I: Family roll-ups include the new entity
	var familyRisk map[string]any
	status = call(t, http.MethodGet, "/v1/family/audit-risk?year=2023", nil, &familyRisk)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, familyRisk["riskLevel"])

	var netWorth map[string]any
	status = call(t, http.MethodGet, "/v1/family/net-worth?year=2023", nil, &netWorth)
	require.Equal(t, http.StatusOK, status)
	total := amount(t, netWorth["totalAssets"].(string))
	assert.True(t, total.GreaterThanOrEqual(amount(t, "1000000")),
		"Family assets should include the recorded deposit")
}

// TestNegativeScenarios exercises the API error paths
func TestNegativeScenarios(t *testing.T) {
	// Missing bearer token
	req, err := http.NewRequest(http.MethodGet, baseURL+"/v1/entities", nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "Unauthenticated requests should be rejected")

	// Unknown entity
	status := call(t, http.MethodGet, "/v1/entities/00000000-0000-0000-0000-00000000dead", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// Hand-entered schedule 3 income
	status = call(t, http.MethodPost, "/v1/incomes", map[string]any{
		"ownerId":  "00000000-0000-0000-0000-000000000001",
		"taxYear":  "2023/24",
		"schedule": 3,
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status, "Derived schedules cannot be entered by hand")

	// Malformed tax year
	status = call(t, http.MethodPost, "/v1/entities", map[string]any{
		"name":         "Bad Year",
		"type":         "INDIVIDUAL",
		"firstTaxYear": "20/2021",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	// Report for a year with no published rate table
	var entity map[string]any
	status = call(t, http.MethodPost, "/v1/entities", map[string]any{
		"name":         "Early Filer",
		"type":         "INDIVIDUAL",
		"firstTaxYear": "2018/19",
	}, &entity)
	require.Equal(t, http.StatusCreated, status)
	status = call(t, http.MethodGet, "/v1/entities/"+entity["id"].(string)+"/tax?year=2019", nil, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status, "Years without a configured table are rejected")
}
