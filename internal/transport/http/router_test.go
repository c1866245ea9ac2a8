package httptransport

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"trustgate/internal/checkin"
	checkinhandler "trustgate/internal/checkin/handler"
	"trustgate/internal/device"
	devicestore "trustgate/internal/device/store"
	"trustgate/internal/geo"
	"trustgate/internal/noshow"
	noshowhandler "trustgate/internal/noshow/handler"
	noshowstore "trustgate/internal/noshow/store"
	"trustgate/internal/reward"
	rewardhandler "trustgate/internal/reward/handler"
	rewardstore "trustgate/internal/reward/store"
	"trustgate/internal/risk"
	"trustgate/internal/scanner"
	scannerhandler "trustgate/internal/scanner/handler"
	scannerstore "trustgate/internal/scanner/store"
	"trustgate/internal/token"
	tokenhandler "trustgate/internal/token/handler"
	"trustgate/internal/token/scanlog"
	tokenstore "trustgate/internal/token/store"
	"trustgate/internal/trust"
	truststore "trustgate/internal/trust/store"
	"trustgate/internal/verification"
	verificationhandler "trustgate/internal/verification/handler"
	verificationstore "trustgate/internal/verification/store"
	id "trustgate/pkg/domain"
	"trustgate/pkg/platform/audit"
)

type testEnv struct {
	router  http.Handler
	userID  id.UserID
	hostID  id.UserID
	eventID id.EventID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := slog.New(slog.DiscardHandler)

	tokenSvc, err := token.New(tokenstore.NewInMemory(), scanlog.NewInMemory(token.ReplayWindow), []byte("router-test-key"))
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	deviceRegistry, err := device.NewRegistry(devicestore.NewInMemory())
	if err != nil {
		t.Fatalf("device registry: %v", err)
	}
	trustSvc, err := trust.New(truststore.NewInMemory())
	if err != nil {
		t.Fatalf("trust service: %v", err)
	}
	verificationSvc, err := verification.New(verificationstore.NewInMemory())
	if err != nil {
		t.Fatalf("verification service: %v", err)
	}
	noshowSvc, err := noshow.New(noshowstore.NewInMemory())
	if err != nil {
		t.Fatalf("noshow service: %v", err)
	}
	rewardSvc, err := reward.New(rewardstore.NewInMemory())
	if err != nil {
		t.Fatalf("reward service: %v", err)
	}
	scannerSvc, err := scanner.New(scannerstore.NewInMemory())
	if err != nil {
		t.Fatalf("scanner service: %v", err)
	}
	publisher, err := audit.NewPublisher(audit.NewMemoryStore())
	if err != nil {
		t.Fatalf("audit publisher: %v", err)
	}

	env := &testEnv{
		userID:  id.NewUserID(),
		hostID:  id.NewUserID(),
		eventID: id.NewEventID(),
	}

	directory := checkin.NewStaticDirectory()
	directory.Add(&checkin.EventInfo{
		ID:        env.eventID,
		HostID:    env.hostID,
		StartTime: time.Now().Add(15 * time.Minute),
		Venue:     geo.Coordinates{Latitude: 52.5200, Longitude: 13.4050},
	})

	checkinSvc, err := checkin.New(checkin.Dependencies{
		Directory:     directory,
		Tokens:        tokenSvc,
		Devices:       deviceRegistry,
		Trust:         trustSvc,
		Verifications: verificationSvc,
		Rewards:       rewardSvc,
		Scanners:      scannerSvc,
		Scorer:        risk.NewScorer(risk.DefaultConfig()),
		Audit:         publisher,
	})
	if err != nil {
		t.Fatalf("checkin service: %v", err)
	}

	env.router = NewRouter(Handlers{
		Checkin:      checkinhandler.New(checkinSvc, log),
		Tokens:       tokenhandler.New(tokenSvc, log),
		Verification: verificationhandler.New(verificationSvc, log),
		NoShow:       noshowhandler.New(noshowSvc, log),
		Rewards:      rewardhandler.New(rewardSvc, log),
		Scanners:     scannerhandler.New(scannerSvc, log),
	}, device.NewFingerprinter(true))
	return env
}

func (e *testEnv) post(t *testing.T, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.get(t, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "corr-1234")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "corr-1234" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}
}

func TestSelfCheckinFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.post(t, "/v1/checkin/validate", map[string]any{
		"user_id":     env.userID.String(),
		"event_id":    env.eventID.String(),
		"mode":        "self_check",
		"latitude":    52.5200,
		"longitude":   13.4050,
		"device_hash": "router-test-device",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decode[struct {
		VerificationID string   `json:"verification_id"`
		Decision       string   `json:"decision"`
		Signals        []string `json:"signals"`
		Reward         *struct {
			RollingCount int    `json:"rolling_count"`
			Tier         string `json:"tier"`
		} `json:"reward"`
	}](t, rec)

	// A brand new device is the only signal, which stays below the
	// escalation band.
	if resp.Decision != "Valid" {
		t.Fatalf("expected Valid decision, got %s (signals %v)", resp.Decision, resp.Signals)
	}
	if resp.Reward == nil || resp.Reward.RollingCount != 1 {
		t.Fatalf("expected reward with rolling count 1, got %+v", resp.Reward)
	}

	listRec := env.get(t, "/v1/verifications?user_id="+env.userID.String())
	if listRec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing verifications, got %d", listRec.Code)
	}
	list := decode[struct {
		Records []struct {
			ID       string `json:"id"`
			Decision string `json:"decision"`
		} `json:"records"`
	}](t, listRec)
	if len(list.Records) != 1 || list.Records[0].ID != resp.VerificationID {
		t.Fatalf("expected the recorded verification in the list, got %+v", list.Records)
	}

	rewardRec := env.get(t, "/v1/rewards/"+env.userID.String())
	if rewardRec.Code != http.StatusOK {
		t.Fatalf("expected 200 for reward state, got %d", rewardRec.Code)
	}
	state := decode[struct {
		Tier         string `json:"tier"`
		RollingCount int    `json:"rolling_count"`
	}](t, rewardRec)
	if state.Tier != "Bronze" || state.RollingCount != 1 {
		t.Fatalf("expected Bronze/1, got %+v", state)
	}
}

func TestHostQRFlowOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	scannerRec := env.post(t, "/v1/scanners", map[string]any{
		"event_id": env.eventID.String(),
		"host_id":  env.hostID.String(),
		"label":    "main-door",
	})
	if scannerRec.Code != http.StatusCreated {
		t.Fatalf("expected 201 registering scanner, got %d: %s", scannerRec.Code, scannerRec.Body.String())
	}
	reg := decode[struct {
		ScannerID string `json:"scanner_id"`
		Secret    string `json:"secret"`
	}](t, scannerRec)
	if reg.Secret == "" {
		t.Fatalf("expected a one-time secret in the registration response")
	}

	issueRec := env.post(t, "/v1/tokens/issue", map[string]any{
		"user_id":  env.userID.String(),
		"event_id": env.eventID.String(),
	})
	if issueRec.Code != http.StatusCreated {
		t.Fatalf("expected 201 issuing token, got %d: %s", issueRec.Code, issueRec.Body.String())
	}
	issued := decode[struct {
		TokenID   string `json:"token_id"`
		QRPayload string `json:"qr_payload"`
	}](t, issueRec)

	validateRec := env.post(t, "/v1/tokens/validate", map[string]any{
		"qr_payload": issued.QRPayload,
	})
	if validateRec.Code != http.StatusOK {
		t.Fatalf("expected 200 validating token, got %d", validateRec.Code)
	}
	preflight := decode[struct {
		Status string `json:"status"`
	}](t, validateRec)
	if preflight.Status != "valid" {
		t.Fatalf("expected valid preflight, got %s", preflight.Status)
	}

	checkinRec := env.post(t, "/v1/checkin/validate", map[string]any{
		"user_id":        env.userID.String(),
		"event_id":       env.eventID.String(),
		"mode":           "host_qr",
		"qr_payload":     issued.QRPayload,
		"scanner_id":     reg.ScannerID,
		"scanner_secret": reg.Secret,
		"device_hash":    "router-test-device",
	})
	if checkinRec.Code != http.StatusOK {
		t.Fatalf("expected 200 for host scan, got %d: %s", checkinRec.Code, checkinRec.Body.String())
	}
	result := decode[struct {
		Decision string `json:"decision"`
	}](t, checkinRec)
	if result.Decision != "Valid" {
		t.Fatalf("expected Valid, got %s", result.Decision)
	}
}

func TestCheckinValidationErrors(t *testing.T) {
	env := newTestEnv(t)

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/checkin/validate", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("missing coordinates for self check", func(t *testing.T) {
		rec := env.post(t, "/v1/checkin/validate", map[string]any{
			"user_id":  env.userID.String(),
			"event_id": env.eventID.String(),
			"mode":     "self_check",
		})
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
	})

	t.Run("unknown event", func(t *testing.T) {
		rec := env.post(t, "/v1/checkin/validate", map[string]any{
			"user_id":   env.userID.String(),
			"event_id":  uuid.NewString(),
			"mode":      "self_check",
			"latitude":  52.5200,
			"longitude": 13.4050,
		})
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("list requires exactly one filter", func(t *testing.T) {
		rec := env.get(t, "/v1/verifications")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestNoShowPredictionOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	rec := env.post(t, "/v1/noshow/predict", map[string]any{
		"user_id":      env.userID.String(),
		"event_id":     env.eventID.String(),
		"event_start":  time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"price_mode":   "paid",
		"no_show_rate": 0.05,
		"total_rsvps":  12,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	pred := decode[struct {
		Probability  float64 `json:"probability"`
		Confidence   float64 `json:"confidence"`
		ModelVersion string  `json:"model_version"`
	}](t, rec)
	if pred.Probability <= 0 || pred.Probability >= 1 {
		t.Fatalf("expected probability in (0,1), got %f", pred.Probability)
	}
	if pred.ModelVersion == "" {
		t.Fatalf("expected model version in response")
	}

	outcomeRec := env.post(t, "/v1/noshow/outcome", map[string]any{
		"user_id":  env.userID.String(),
		"event_id": env.eventID.String(),
		"outcome":  "attended",
	})
	if outcomeRec.Code != http.StatusOK {
		t.Fatalf("expected 200 recording outcome, got %d: %s", outcomeRec.Code, outcomeRec.Body.String())
	}

	repeatRec := env.post(t, "/v1/noshow/outcome", map[string]any{
		"user_id":  env.userID.String(),
		"event_id": env.eventID.String(),
		"outcome":  "no_show",
	})
	if repeatRec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for repeated outcome, got %d", repeatRec.Code)
	}
}
