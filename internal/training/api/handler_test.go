package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fcttechnologies/VillainArc-sub000/internal/training"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training/api"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training/store"

	"github.com/golang/mock/gomock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(trainingStore *MocktrainingStore) *mux.Router {
	r := mux.NewRouter()
	api.NewHandler(newTestService(trainingStore)).SetupRoutes(r)
	return r
}

func TestHandleCommitSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	trainingStore := NewMocktrainingStore(ctrl)

	trainingStore.EXPECT().
		AddSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, s *training.Session) error {
			s.ID = 50
			return nil
		})
	trainingStore.EXPECT().AddChanges(gomock.Any(), gomock.Any()).Return(nil)

	body := `{"startedAt": "2025-03-20T10:00:00Z", "finishedAt": "2025-03-20T11:00:00Z"}`
	req := httptest.NewRequest("POST", "/training/sessions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	newTestRouter(trainingStore).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var result api.SessionResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	require.NotNil(t, result.Session)
	assert.Equal(t, 50, result.Session.ID)
	assert.Empty(t, result.Suggestions)
}

func TestHandleCommitSession_WrongContentType(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	trainingStore := NewMocktrainingStore(ctrl)

	req := httptest.NewRequest("POST", "/training/sessions", strings.NewReader("{}"))
	rr := httptest.NewRecorder()

	newTestRouter(trainingStore).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleGenerateSuggestions_SessionNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	trainingStore := NewMocktrainingStore(ctrl)

	trainingStore.EXPECT().
		GetSession(gomock.Any(), 404).
		Return(nil, store.ErrSessionNotFound)

	req := httptest.NewRequest("POST", "/training/sessions/404/suggestions", nil)
	rr := httptest.NewRecorder()

	newTestRouter(trainingStore).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleResolveOutcomes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	trainingStore := NewMocktrainingStore(ctrl)

	trainingStore.EXPECT().
		GetSession(gomock.Any(), 50).
		Return(&training.Session{ID: 50, StartedAt: sessionStart}, nil)

	req := httptest.NewRequest("POST", "/training/sessions/50/outcomes", nil)
	rr := httptest.NewRecorder()

	newTestRouter(trainingStore).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `{"status": "ok"}`, rr.Body.String())
}

func TestHandleListChanges_EmptyIsAnArray(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	trainingStore := NewMocktrainingStore(ctrl)

	trainingStore.EXPECT().ListChanges(gomock.Any(), 1).Return(nil, nil)

	req := httptest.NewRequest("GET", "/training/prescriptions/1/changes", nil)
	rr := httptest.NewRecorder()

	newTestRouter(trainingStore).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}

func TestHandleListChanges_BadID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	trainingStore := NewMocktrainingStore(ctrl)

	req := httptest.NewRequest("GET", "/training/prescriptions/nope/changes", nil)
	rr := httptest.NewRecorder()

	newTestRouter(trainingStore).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleDecision(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	trainingStore := NewMocktrainingStore(ctrl)

	trainingStore.EXPECT().
		UpdateDecision(gomock.Any(), "ch-1", training.DecisionAccepted).
		Return(nil)

	req := httptest.NewRequest("PUT", "/training/changes/ch-1/decision", strings.NewReader(`{"decision": "accepted"}`))
	rr := httptest.NewRecorder()

	newTestRouter(trainingStore).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `{"status": "ok"}`, rr.Body.String())
}

func TestHandleDecision_ChangeNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	trainingStore := NewMocktrainingStore(ctrl)

	trainingStore.EXPECT().
		UpdateDecision(gomock.Any(), "ch-404", training.DecisionRejected).
		Return(store.ErrChangeNotFound)

	req := httptest.NewRequest("PUT", "/training/changes/ch-404/decision", strings.NewReader(`{"decision": "rejected"}`))
	rr := httptest.NewRecorder()

	newTestRouter(trainingStore).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleDecision_UnknownDecision(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	trainingStore := NewMocktrainingStore(ctrl)

	req := httptest.NewRequest("PUT", "/training/changes/ch-1/decision", strings.NewReader(`{"decision": "maybe"}`))
	rr := httptest.NewRecorder()

	newTestRouter(trainingStore).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
