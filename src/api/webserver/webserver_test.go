package webserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aegisai/civicchain/src/api/config"
	"github.com/aegisai/civicchain/src/api/types"
	"github.com/aegisai/civicchain/src/governance"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, walletVerifyURL string) (*gin.Engine, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&types.Member{}, &types.Proposal{}, &types.Vote{},
		&types.Complaint{}, &types.Event{}, &types.EventRSVP{},
		&types.VolunteerRole{},
	))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	store := governance.NewGormStore(db)
	ctrl := governance.NewController(store, store)

	cfg := config.Config{
		JWTSecret:       testSecret,
		AIEndpoint:      "http://127.0.0.1:0", // classifier unreachable, fallback path
		WalletVerifyURL: walletVerifyURL,
	}
	return New(cfg, db, rdb, ctrl), db
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func authToken(t *testing.T, addr string) string {
	t.Helper()
	token, err := issueJWT(addr, []byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestAuthFlow(t *testing.T) {
	wallet := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"valid":true}`))
	}))
	defer wallet.Close()

	r, _ := newTestServer(t, wallet.URL)

	w := doJSON(t, r, http.MethodPost, "/v1/auth/challenge", "", gin.H{"address": "alice"})
	require.Equal(t, http.StatusOK, w.Code)
	var challenge struct {
		Nonce string `json:"nonce"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &challenge))
	require.NotEmpty(t, challenge.Nonce)

	w = doJSON(t, r, http.MethodPost, "/v1/auth/verify", "", gin.H{
		"address": "alice", "signature": "0xsigned",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var verified struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verified))
	require.NotEmpty(t, verified.Token)

	// token opens secured routes
	w = doJSON(t, r, http.MethodGet, "/v1/profile", verified.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// replaying the challenge fails: nonce is one-shot
	w = doJSON(t, r, http.MethodPost, "/v1/auth/verify", "", gin.H{
		"address": "alice", "signature": "0xsigned",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSecuredRoutesRequireToken(t *testing.T) {
	r, _ := newTestServer(t, "")
	w := doJSON(t, r, http.MethodPost, "/v1/proposals", "", gin.H{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProposalLifecycleOverHTTP(t *testing.T) {
	r, _ := newTestServer(t, "")
	alice := authToken(t, "alice")
	bob := authToken(t, "bob")

	w := doJSON(t, r, http.MethodPost, "/v1/proposals", alice, gin.H{
		"title":       "New bike lanes",
		"description": "Protected lanes on Main St.",
		"category":    types.CategoryInfrastructure,
		"quorumVotes": 2,
		"endAt":       time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var prop types.Proposal
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prop))
	require.NotEmpty(t, prop.ID)
	assert.Equal(t, types.StatusActive, prop.Status)

	// bob votes for
	path := fmt.Sprintf("/v1/proposals/%s/votes", prop.ID)
	w = doJSON(t, r, http.MethodPost, path, bob, gin.H{"choice": "for"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prop))
	assert.Equal(t, 1, prop.VotesFor)
	assert.Equal(t, 100, prop.SupportPct)

	// bob changes his mind: still one vote
	w = doJSON(t, r, http.MethodPost, path, bob, gin.H{"choice": "against"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prop))
	assert.Equal(t, 0, prop.VotesFor)
	assert.Equal(t, 1, prop.VotesAgainst)

	// public tally summary
	w = doJSON(t, r, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.EqualValues(t, 1, summary["against"])

	// only the creator may cancel
	cancelPath := fmt.Sprintf("/v1/proposals/%s/cancel", prop.ID)
	w = doJSON(t, r, http.MethodPost, cancelPath, bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodPost, cancelPath, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prop))
	assert.Equal(t, types.StatusCancelled, prop.Status)

	// voting on a cancelled proposal conflicts
	w = doJSON(t, r, http.MethodPost, path, bob, gin.H{"choice": "for"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// cancelling twice conflicts too
	w = doJSON(t, r, http.MethodPost, cancelPath, alice, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateProposalValidationMapping(t *testing.T) {
	r, _ := newTestServer(t, "")
	alice := authToken(t, "alice")

	w := doJSON(t, r, http.MethodPost, "/v1/proposals", alice, gin.H{
		"title":       "Bad category",
		"description": "whatever",
		"category":    "Parking",
		"quorumVotes": 1,
		"endAt":       time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Field string `json:"field"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "category", body.Field)
}

func TestUnknownProposalIs404(t *testing.T) {
	r, _ := newTestServer(t, "")
	w := doJSON(t, r, http.MethodGet, "/v1/proposals/does-not-exist", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestComplaintFallsBackWhenClassifierDown(t *testing.T) {
	r, _ := newTestServer(t, "")
	alice := authToken(t, "alice")

	w := doJSON(t, r, http.MethodPost, "/v1/complaints", alice, gin.H{
		"title":       "Gas leak near the school",
		"description": "Strong smell since this morning",
		"location":    "Oak & 3rd",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var comp types.Complaint
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comp))
	assert.Equal(t, "Infrastructure", comp.Category)
	assert.True(t, comp.IsEmergency)
	assert.Equal(t, 5, comp.Priority)

	// complaint intake succeeded despite the classifier being unreachable
	w = doJSON(t, r, http.MethodGet, "/v1/complaints", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []types.Complaint
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestEventRSVPReplaces(t *testing.T) {
	r, db := newTestServer(t, "")
	alice := authToken(t, "alice")

	w := doJSON(t, r, http.MethodPost, "/v1/events", alice, gin.H{
		"title":   "Park cleanup",
		"startAt": time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var ev types.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ev))

	path := fmt.Sprintf("/v1/events/%s/rsvp", ev.ID)
	w = doJSON(t, r, http.MethodPost, path, alice, gin.H{"status": "going"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPost, path, alice, gin.H{"status": "declined"})
	require.Equal(t, http.StatusOK, w.Code)

	var rsvps []types.EventRSVP
	require.NoError(t, db.Where("event_id = ?", ev.ID).Find(&rsvps).Error)
	require.Len(t, rsvps, 1)
	assert.Equal(t, "declined", rsvps[0].Status)
}

func TestVolunteerSignupCapacity(t *testing.T) {
	r, _ := newTestServer(t, "")
	alice := authToken(t, "alice")

	w := doJSON(t, r, http.MethodPost, "/v1/volunteers", alice, gin.H{
		"title":      "Tree planting",
		"spotsTotal": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var role types.VolunteerRole
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &role))

	path := fmt.Sprintf("/v1/volunteers/%s/signup", role.ID)
	for i := 0; i < 2; i++ {
		w = doJSON(t, r, http.MethodPost, path, alice, nil)
		require.Equal(t, http.StatusNoContent, w.Code)
	}
	// full now
	w = doJSON(t, r, http.MethodPost, path, alice, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodGet, "/v1/volunteers?open=true", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var open []types.VolunteerRole
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &open))
	assert.Empty(t, open)
}
