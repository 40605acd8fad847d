package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parkfind/backend/internal/domain"
	"github.com/parkfind/backend/internal/middleware"
)

type stubNotificationRepo struct {
	mu      sync.Mutex
	records []*domain.Notification
}

func (s *stubNotificationRepo) CreateNotification(ctx context.Context, params domain.CreateNotificationParams) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := &domain.Notification{
		ID:           uuid.New(),
		Code:         params.Code,
		FollowID:     params.FollowID,
		CommentID:    params.CommentID,
		ParkUpdateID: params.ParkUpdateID,
		Message:      params.Message,
		TargetUserID: params.TargetUserID,
		CreatedAt:    time.Now(),
	}
	s.records = append(s.records, n)
	return n, nil
}

func (s *stubNotificationRepo) GetNotificationByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	return nil, domain.ErrNotificationNotFound
}

func (s *stubNotificationRepo) ListNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.NotificationRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []*domain.NotificationRow
	for _, n := range s.records {
		if n.TargetUserID == userID {
			rows = append(rows, &domain.NotificationRow{Notification: *n})
		}
	}
	return rows, nil
}

func (s *stubNotificationRepo) MarkNotificationsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var changed int64
	for _, n := range s.records {
		for _, id := range ids {
			if n.ID == id && n.TargetUserID == userID && !n.Checked {
				n.Checked = true
				changed++
			}
		}
	}
	return changed, nil
}

func (s *stubNotificationRepo) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var changed int64
	for _, n := range s.records {
		if n.TargetUserID == userID && !n.Checked {
			n.Checked = true
			changed++
		}
	}
	return changed, nil
}

func (s *stubNotificationRepo) CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, n := range s.records {
		if n.TargetUserID == userID && !n.Checked {
			count++
		}
	}
	return count, nil
}

func (s *stubNotificationRepo) seedFollow(t *testing.T, userID uuid.UUID) *domain.Notification {
	t.Helper()
	followID := uuid.New()
	n, err := s.CreateNotification(context.Background(), domain.CreateNotificationParams{
		Code:         domain.CodeFollow,
		TargetUserID: userID,
		FollowID:     &followID,
	})
	require.NoError(t, err)
	return n
}

// authedRequest builds a request carrying the identity the auth middleware
// would have injected.
func authedRequest(method, target, body string, userID uuid.UUID) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
	return r.WithContext(ctx)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func newNotificationHandler() (*NotificationHandler, *stubNotificationRepo) {
	repo := &stubNotificationRepo{}
	return NewNotificationHandler(domain.NewNotificationService(repo), zap.NewNop()), repo
}

func TestNotificationHandler_RejectsUnauthenticated(t *testing.T) {
	h, _ := newNotificationHandler()

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodPost, "/notifications/list", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.UnreadCount(rec, httptest.NewRequest(http.MethodGet, "/notifications/unread-count", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNotificationHandler_List(t *testing.T) {
	h, repo := newNotificationHandler()
	userID := uuid.New()
	repo.seedFollow(t, userID)
	repo.seedFollow(t, uuid.New()) // someone else's

	rec := httptest.NewRecorder()
	h.List(rec, authedRequest(http.MethodPost, "/notifications/list", `{"page":1,"size":20}`, userID))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)

	var items []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1, "listing is scoped to the authenticated user")
	assert.Equal(t, "FOLLOW", items[0]["code"])
	assert.Equal(t, false, items[0]["checked"])
}

func TestNotificationHandler_ListRejectsMalformedBody(t *testing.T) {
	h, _ := newNotificationHandler()

	rec := httptest.NewRecorder()
	h.List(rec, authedRequest(http.MethodPost, "/notifications/list", `{"page":`, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotificationHandler_MarkRead(t *testing.T) {
	h, repo := newNotificationHandler()
	userID := uuid.New()
	n := repo.seedFollow(t, userID)

	body := `{"ids":["` + n.ID.String() + `"]}`
	rec := httptest.NewRecorder()
	h.MarkRead(rec, authedRequest(http.MethodPost, "/notifications/read", body, userID))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	var data map[string]int64
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, int64(1), data["changed"])

	// Same request again: already read, nothing changes.
	rec = httptest.NewRecorder()
	h.MarkRead(rec, authedRequest(http.MethodPost, "/notifications/read", body, userID))

	require.Equal(t, http.StatusOK, rec.Code)
	env = decodeEnvelope(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Zero(t, data["changed"])
}

func TestNotificationHandler_MarkReadRejectsBadID(t *testing.T) {
	h, _ := newNotificationHandler()

	rec := httptest.NewRecorder()
	h.MarkRead(rec, authedRequest(http.MethodPost, "/notifications/read", `{"ids":["not-a-uuid"]}`, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotificationHandler_MarkAllRead(t *testing.T) {
	h, repo := newNotificationHandler()
	userID := uuid.New()
	repo.seedFollow(t, userID)
	repo.seedFollow(t, userID)

	rec := httptest.NewRecorder()
	h.MarkAllRead(rec, authedRequest(http.MethodPost, "/notifications/read-all", "", userID))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	var data map[string]int64
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, int64(2), data["changed"])
}

func TestNotificationHandler_UnreadCount(t *testing.T) {
	h, repo := newNotificationHandler()
	userID := uuid.New()
	repo.seedFollow(t, userID)
	repo.seedFollow(t, userID)
	repo.seedFollow(t, userID)

	rec := httptest.NewRecorder()
	h.UnreadCount(rec, authedRequest(http.MethodGet, "/notifications/unread-count", "", userID))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	var data map[string]int64
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, int64(3), data["count"])
}
