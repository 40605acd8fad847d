package push

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parkfind/backend/internal/config"
	"github.com/parkfind/backend/internal/domain"
)

type fakeSubStore struct {
	subs  []*domain.PushSubscription
	err   error
	calls int
}

func (f *fakeSubStore) GetPushSubscriptions(ctx context.Context, userID uuid.UUID) ([]*domain.PushSubscription, error) {
	f.calls++
	return f.subs, f.err
}

func testVAPID(t *testing.T) config.VAPIDConfig {
	t.Helper()
	priv, pub, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)
	return config.VAPIDConfig{
		Subject:    "mailto:push@parkfind.app",
		PublicKey:  pub,
		PrivateKey: priv,
	}
}

// browserKeys fabricates the client half of a Web Push subscription: a P-256
// public key and a 16-byte auth secret, both base64url encoded the way a
// browser's PushSubscription.toJSON() emits them.
func browserKeys(t *testing.T) (p256dh, auth string) {
	t.Helper()
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	secret := make([]byte, 16)
	_, err = rand.Read(secret)
	require.NoError(t, err)
	return base64.RawURLEncoding.EncodeToString(priv.PublicKey().Bytes()),
		base64.RawURLEncoding.EncodeToString(secret)
}

func subscription(t *testing.T, userID uuid.UUID, endpoint string) *domain.PushSubscription {
	t.Helper()
	p256dh, auth := browserKeys(t)
	return &domain.PushSubscription{
		ID:       uuid.New(),
		UserID:   userID,
		Endpoint: endpoint,
		P256dh:   p256dh,
		Auth:     auth,
	}
}

func testDelivery(userID uuid.UUID) Delivery {
	return Delivery{
		NotificationID: uuid.New(),
		UserID:         userID,
		Code:           domain.CodeFollow,
		Title:          "새 팔로우",
		Body:           "산책러님이 회원님을 팔로우하기 시작했습니다.",
		DeepLink:       "parkfind://users/123",
	}
}

func TestNewWebPushChannel_UsesDedicatedHTTPClient(t *testing.T) {
	ch := NewWebPushChannel(&fakeSubStore{}, testVAPID(t), zap.NewNop())

	require.NotNil(t, ch.client, "sends must not fall back to the default client")
	assert.NotZero(t, ch.client.Timeout)
}

func TestWebPushChannel_SkipsWhenVAPIDUnconfigured(t *testing.T) {
	store := &fakeSubStore{}
	ch := NewWebPushChannel(store, config.VAPIDConfig{}, zap.NewNop())

	err := ch.Send(context.Background(), testDelivery(uuid.New()))

	require.NoError(t, err)
	assert.Zero(t, store.calls, "unconfigured channel must not touch storage")
}

func TestWebPushChannel_StoreErrorIsSwallowed(t *testing.T) {
	store := &fakeSubStore{err: errors.New("db down")}
	ch := NewWebPushChannel(store, testVAPID(t), zap.NewNop())

	err := ch.Send(context.Background(), testDelivery(uuid.New()))

	assert.NoError(t, err)
}

func TestWebPushChannel_NoSubscriptionsIsNoop(t *testing.T) {
	store := &fakeSubStore{}
	ch := NewWebPushChannel(store, testVAPID(t), zap.NewNop())

	err := ch.Send(context.Background(), testDelivery(uuid.New()))

	assert.NoError(t, err)
}

func TestWebPushChannel_DeliversToEverySubscription(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "aes128gcm", r.Header.Get("Content-Encoding"))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	userID := uuid.New()
	store := &fakeSubStore{subs: []*domain.PushSubscription{
		subscription(t, userID, srv.URL+"/sub/1"),
		subscription(t, userID, srv.URL+"/sub/2"),
		subscription(t, userID, srv.URL+"/sub/3"),
	}}
	ch := NewWebPushChannel(store, testVAPID(t), zap.NewNop())

	err := ch.Send(context.Background(), testDelivery(userID))

	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestWebPushChannel_FailingSubscriptionDoesNotStopTheRest(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path == "/sub/expired" {
			// The push service's way of saying the browser unsubscribed.
			w.WriteHeader(http.StatusGone)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	userID := uuid.New()
	store := &fakeSubStore{subs: []*domain.PushSubscription{
		subscription(t, userID, srv.URL+"/sub/expired"),
		subscription(t, userID, srv.URL+"/sub/ok"),
	}}
	ch := NewWebPushChannel(store, testVAPID(t), zap.NewNop())

	err := ch.Send(context.Background(), testDelivery(userID))

	require.NoError(t, err, "rejected subscriptions are logged, not surfaced")
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits), "every subscription gets its attempt")
}

func TestWebPushChannel_CancelledContextAbortsAndPropagates(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	userID := uuid.New()
	store := &fakeSubStore{subs: []*domain.PushSubscription{
		subscription(t, userID, srv.URL+"/sub/1"),
		subscription(t, userID, srv.URL+"/sub/2"),
	}}
	ch := NewWebPushChannel(store, testVAPID(t), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := ch.Send(ctx, testDelivery(userID))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, atomic.LoadInt32(&hits), "no send attempts after cancellation")
}
