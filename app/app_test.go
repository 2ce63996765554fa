package app_test

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/amirasaad/pinbank/app"
	"github.com/amirasaad/pinbank/infra/initializer"
	"github.com/amirasaad/pinbank/internal/fixtures"
	"github.com/amirasaad/pinbank/pkg/config"
	"github.com/amirasaad/pinbank/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
)

func testConfig() *config.App {
	return &config.App{
		Env:       "test",
		Server:    &config.Server{Host: "localhost", Port: 3000},
		Log:       &config.Log{},
		DB:        &config.DB{},
		Jwt:       &config.Jwt{Secret: "test-secret", Expiry: time.Hour},
		Bank:      &config.Bank{TransferFeeRate: 0.02, LockoutThreshold: 3, LockDuration: 30 * time.Minute},
		RateLimit: &config.RateLimit{MaxRequests: 1000, Window: time.Minute},
	}
}

type E2ETestSuite struct {
	suite.Suite
	app   *fiber.App
	store *fixtures.Store
}

func (s *E2ETestSuite) SetupTest() {
	s.store = fixtures.NewStore()
	s.app = app.New(&initializer.Deps{
		Config: testConfig(),
		Logger: slog.New(slog.DiscardHandler),
		Uow:    s.store,
	})
}

func (s *E2ETestSuite) makeRequest(method, path, body, token string) *http.Response {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	return resp
}

func (s *E2ETestSuite) decode(resp *http.Response) map[string]any {
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	err := json.NewDecoder(resp.Body).Decode(&envelope)
	s.Require().NoError(err)
	return envelope.Data
}

// register creates an account over HTTP and returns its account number.
func (s *E2ETestSuite) register(username, pin string, initial float64) string {
	body := fmt.Sprintf(`{"username":%q,"pin":%q,"initial_deposit":%v}`, username, pin, initial)
	resp := s.makeRequest("POST", "/auth/register", body, "")
	defer resp.Body.Close() //nolint:errcheck
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	data := s.decode(resp)
	number, _ := data["account_number"].(string)
	s.Require().NotEmpty(number)
	return number
}

// login authenticates over HTTP and returns the session token.
func (s *E2ETestSuite) login(username, pin string) string {
	body := fmt.Sprintf(`{"username":%q,"pin":%q}`, username, pin)
	resp := s.makeRequest("POST", "/auth/login", body, "")
	defer resp.Body.Close() //nolint:errcheck
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	data := s.decode(resp)
	token, _ := data["token"].(string)
	s.Require().NotEmpty(token)
	return token
}

type AuthRoutesTestSuite struct {
	E2ETestSuite
}

func (s *AuthRoutesTestSuite) TestHealthRoute() {
	resp := s.makeRequest("GET", "/", "", "")
	defer resp.Body.Close() //nolint:errcheck
	s.Assert().Equal(fiber.StatusOK, resp.StatusCode)
}

func (s *AuthRoutesTestSuite) TestRegisterVariants() {
	testCases := []struct {
		desc       string
		body       string
		wantStatus int
	}{
		{
			desc:       "success",
			body:       `{"username":"alice","pin":"1234","initial_deposit":100}`,
			wantStatus: fiber.StatusCreated,
		},
		{
			desc:       "pin too short",
			body:       `{"username":"bob","pin":"12","initial_deposit":0}`,
			wantStatus: fiber.StatusBadRequest,
		},
		{
			desc:       "pin not numeric",
			body:       `{"username":"carol","pin":"abcd","initial_deposit":0}`,
			wantStatus: fiber.StatusBadRequest,
		},
		{
			desc:       "missing username",
			body:       `{"pin":"1234"}`,
			wantStatus: fiber.StatusBadRequest,
		},
		{
			desc:       "malformed body",
			body:       `{"username":123}`,
			wantStatus: fiber.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.desc, func() {
			resp := s.makeRequest("POST", "/auth/register", tc.body, "")
			defer resp.Body.Close() //nolint:errcheck
			s.Assert().Equal(tc.wantStatus, resp.StatusCode)
		})
	}
}

func (s *AuthRoutesTestSuite) TestValidationFailureIsProblemNot500() {
	resp := s.makeRequest("POST", "/auth/register", `{"username":123}`, "")
	defer resp.Body.Close() //nolint:errcheck
	s.Require().Equal(fiber.StatusBadRequest, resp.StatusCode)

	var pd common.ProblemDetails
	err := json.NewDecoder(resp.Body).Decode(&pd)
	s.Require().NoError(err)
	s.Assert().Equal(fiber.StatusBadRequest, pd.Status)
}

func (s *AuthRoutesTestSuite) TestUnknownRouteReturnsNotFound() {
	resp := s.makeRequest("GET", "/nope", "", "")
	defer resp.Body.Close() //nolint:errcheck
	s.Assert().Equal(fiber.StatusNotFound, resp.StatusCode)

	var pd common.ProblemDetails
	err := json.NewDecoder(resp.Body).Decode(&pd)
	s.Require().NoError(err)
	s.Assert().Equal(fiber.StatusNotFound, pd.Status)
}

func (s *AuthRoutesTestSuite) TestRegisterDuplicateUsername() {
	s.register("alice", "1234", 0)
	resp := s.makeRequest("POST", "/auth/register",
		`{"username":"alice","pin":"5678","initial_deposit":0}`, "")
	defer resp.Body.Close() //nolint:errcheck
	s.Assert().Equal(fiber.StatusConflict, resp.StatusCode)
}

func (s *AuthRoutesTestSuite) TestRegisterReturnsAccountNumber() {
	number := s.register("alice", "1234", 250.00)
	s.Assert().Regexp(`^BANK-\d{7}$`, number)
}

func (s *AuthRoutesTestSuite) TestLoginSuccess() {
	s.register("alice", "1234", 100)
	token := s.login("alice", "1234")
	s.Assert().NotEmpty(token)
}

func (s *AuthRoutesTestSuite) TestLoginWrongPIN() {
	s.register("alice", "1234", 0)
	resp := s.makeRequest("POST", "/auth/login", `{"username":"alice","pin":"9999"}`, "")
	defer resp.Body.Close() //nolint:errcheck
	s.Assert().Equal(fiber.StatusUnauthorized, resp.StatusCode)
}

func (s *AuthRoutesTestSuite) TestLoginUnknownUser() {
	resp := s.makeRequest("POST", "/auth/login", `{"username":"nobody","pin":"1234"}`, "")
	defer resp.Body.Close() //nolint:errcheck
	s.Assert().Equal(fiber.StatusNotFound, resp.StatusCode)
}

func (s *AuthRoutesTestSuite) TestLoginLockoutOverHTTP() {
	s.register("alice", "1234", 0)
	for range 3 {
		resp := s.makeRequest("POST", "/auth/login", `{"username":"alice","pin":"9999"}`, "")
		s.Assert().Equal(fiber.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close() //nolint:errcheck
	}
	// Correct PIN is still rejected while the lock holds.
	resp := s.makeRequest("POST", "/auth/login", `{"username":"alice","pin":"1234"}`, "")
	defer resp.Body.Close() //nolint:errcheck
	s.Assert().Equal(fiber.StatusForbidden, resp.StatusCode)
}

type AccountRoutesTestSuite struct {
	E2ETestSuite
	token string
}

func (s *AccountRoutesTestSuite) SetupTest() {
	s.E2ETestSuite.SetupTest()
	s.register("alice", "1234", 1000.00)
	s.token = s.login("alice", "1234")
}

func (s *AccountRoutesTestSuite) TestRoutesRequireToken() {
	paths := []struct{ method, path string }{
		{"POST", "/account/deposit"},
		{"POST", "/account/withdraw"},
		{"POST", "/account/transfer"},
		{"GET", "/account/balance"},
		{"GET", "/account/statement"},
	}
	for _, p := range paths {
		resp := s.makeRequest(p.method, p.path, "", "")
		s.Assert().Equal(fiber.StatusUnauthorized, resp.StatusCode, p.path)
		resp.Body.Close() //nolint:errcheck
	}
}

func (s *AccountRoutesTestSuite) TestDepositSuccess() {
	resp := s.makeRequest("POST", "/account/deposit",
		`{"amount":500,"pin":"1234"}`, s.token)
	defer resp.Body.Close() //nolint:errcheck
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	data := s.decode(resp)
	s.Assert().InDelta(1500.00, data["balance"], 0.001)
}

func (s *AccountRoutesTestSuite) TestDepositVariants() {
	testCases := []struct {
		desc       string
		body       string
		wantStatus int
	}{
		{
			desc:       "negative amount",
			body:       `{"amount":-5,"pin":"1234"}`,
			wantStatus: fiber.StatusBadRequest,
		},
		{
			desc:       "zero amount",
			body:       `{"amount":0,"pin":"1234"}`,
			wantStatus: fiber.StatusBadRequest,
		},
		{
			desc:       "missing pin",
			body:       `{"amount":100}`,
			wantStatus: fiber.StatusBadRequest,
		},
		{
			desc:       "wrong pin",
			body:       `{"amount":100,"pin":"9999"}`,
			wantStatus: fiber.StatusUnauthorized,
		},
	}
	for _, tc := range testCases {
		s.Run(tc.desc, func() {
			resp := s.makeRequest("POST", "/account/deposit", tc.body, s.token)
			defer resp.Body.Close() //nolint:errcheck
			s.Assert().Equal(tc.wantStatus, resp.StatusCode)
		})
	}
}

func (s *AccountRoutesTestSuite) TestWithdrawInsufficientFunds() {
	resp := s.makeRequest("POST", "/account/withdraw",
		`{"amount":5000,"pin":"1234"}`, s.token)
	defer resp.Body.Close() //nolint:errcheck
	s.Assert().Equal(fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func (s *AccountRoutesTestSuite) TestTransferFlow() {
	recipientNumber := s.register("bob", "5678", 500.00)

	body := fmt.Sprintf(`{"recipient_account":%q,"amount":300,"pin":"1234"}`, recipientNumber)
	resp := s.makeRequest("POST", "/account/transfer", body, s.token)
	defer resp.Body.Close() //nolint:errcheck
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)

	// 300.00 at 2%: sender pays 294.00, so 1000.00 becomes 706.00.
	data := s.decode(resp)
	s.Assert().InDelta(706.00, data["balance"], 0.001)

	bobToken := s.login("bob", "5678")
	balResp := s.makeRequest("GET", "/account/balance", "", bobToken)
	defer balResp.Body.Close() //nolint:errcheck
	s.Require().Equal(fiber.StatusOK, balResp.StatusCode)
	bobData := s.decode(balResp)
	s.Assert().InDelta(800.00, bobData["balance"], 0.001)
}

func (s *AccountRoutesTestSuite) TestTransferToSelf() {
	balResp := s.makeRequest("GET", "/account/balance", "", s.token)
	s.Require().Equal(fiber.StatusOK, balResp.StatusCode)
	data := s.decode(balResp)
	balResp.Body.Close() //nolint:errcheck
	ownNumber, _ := data["account_number"].(string)
	s.Require().NotEmpty(ownNumber)

	body := fmt.Sprintf(`{"recipient_account":%q,"amount":100,"pin":"1234"}`, ownNumber)
	resp := s.makeRequest("POST", "/account/transfer", body, s.token)
	defer resp.Body.Close() //nolint:errcheck
	s.Assert().Equal(fiber.StatusConflict, resp.StatusCode)
}

func (s *AccountRoutesTestSuite) TestTransferToUnknownNumber() {
	resp := s.makeRequest("POST", "/account/transfer",
		`{"recipient_account":"BANK-0000000","amount":100,"pin":"1234"}`, s.token)
	defer resp.Body.Close() //nolint:errcheck
	s.Assert().Equal(fiber.StatusNotFound, resp.StatusCode)
}

func (s *AccountRoutesTestSuite) TestStatementEmptyReturnsNotFound() {
	resp := s.makeRequest("GET", "/account/statement", "", s.token)
	defer resp.Body.Close() //nolint:errcheck
	s.Assert().Equal(fiber.StatusNotFound, resp.StatusCode)

	var pd common.ProblemDetails
	err := json.NewDecoder(resp.Body).Decode(&pd)
	s.Require().NoError(err)
	s.Assert().Equal(fiber.StatusNotFound, pd.Status)
}

func (s *AccountRoutesTestSuite) TestStatementListsOperations() {
	depResp := s.makeRequest("POST", "/account/deposit", `{"amount":200,"pin":"1234"}`, s.token)
	s.Require().Equal(fiber.StatusOK, depResp.StatusCode)
	depResp.Body.Close() //nolint:errcheck
	wdResp := s.makeRequest("POST", "/account/withdraw", `{"amount":50,"pin":"1234"}`, s.token)
	s.Require().Equal(fiber.StatusOK, wdResp.StatusCode)
	wdResp.Body.Close() //nolint:errcheck

	resp := s.makeRequest("GET", "/account/statement", "", s.token)
	defer resp.Body.Close() //nolint:errcheck
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	data := s.decode(resp)
	txs, ok := data["transactions"].([]any)
	s.Require().True(ok)
	s.Require().Len(txs, 2)

	// Most recent first.
	first, _ := txs[0].(map[string]any)
	s.Assert().Equal("Withdrawal", first["type"])

	limited := s.makeRequest("GET", "/account/statement?limit=1", "", s.token)
	defer limited.Body.Close() //nolint:errcheck
	s.Require().Equal(fiber.StatusOK, limited.StatusCode)
	limitedData := s.decode(limited)
	limitedTxs, _ := limitedData["transactions"].([]any)
	s.Assert().Len(limitedTxs, 1)
}

func (s *AccountRoutesTestSuite) TestStatementRejectsBadLimit() {
	resp := s.makeRequest("GET", "/account/statement?limit=abc", "", s.token)
	defer resp.Body.Close() //nolint:errcheck
	s.Assert().Equal(fiber.StatusBadRequest, resp.StatusCode)
}

func TestAuthRoutesTestSuite(t *testing.T) {
	suite.Run(t, new(AuthRoutesTestSuite))
}

func TestAccountRoutesTestSuite(t *testing.T) {
	suite.Run(t, new(AccountRoutesTestSuite))
}
