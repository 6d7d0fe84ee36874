// README: Email delivery tests (retry policy, backoff, status events).
package email

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motorpool/internal/types"
)

type fakeTransport struct {
	mu       sync.Mutex
	failures int
	attempts int
}

func (f *fakeTransport) Send(subject, body string, to []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.attempts <= f.failures {
		return errors.New("smtp unavailable")
	}
	return nil
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []StatusEvent
}

func (f *fakeEmitter) Emit(_ context.Context, _ string, _ string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ev, ok := payload.(StatusEvent); ok {
		f.events = append(f.events, ev)
	}
	return nil
}

func (f *fakeEmitter) statuses() []DeliveryStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]DeliveryStatus, 0, len(f.events))
	for _, ev := range f.events {
		out = append(out, ev.Status)
	}
	return out
}

func newTestService(t *testing.T, transport Transport, emitter *fakeEmitter) *Service {
	t.Helper()
	renderer, err := NewTemplateRenderer()
	require.NoError(t, err)
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	svc := NewService(transport, renderer, emitter, log)
	svc.sleep = func(time.Duration) {}
	return svc
}

var testRcpt = Recipient{UserID: "u1", Name: "Emp", Email: "emp@fleet.test"}

func TestSendSucceedsFirstAttempt(t *testing.T) {
	transport := &fakeTransport{}
	emitter := &fakeEmitter{}
	svc := newTestService(t, transport, emitter)

	ok := svc.Send(context.Background(), KindRideApproved, testRcpt,
		map[string]any{"name": "Emp", "ride_id": "r1"}, nil, true)

	assert.True(t, ok)
	assert.Equal(t, 1, transport.attempts)
	assert.Equal(t, []DeliveryStatus{StatusAttempting, StatusSent}, emitter.statuses())
}

func TestSendRetriesThenSucceeds(t *testing.T) {
	transport := &fakeTransport{failures: 2}
	emitter := &fakeEmitter{}
	svc := newTestService(t, transport, emitter)

	ok := svc.Send(context.Background(), KindRideApproved, testRcpt,
		map[string]any{"name": "Emp", "ride_id": "r1"}, nil, true)

	assert.True(t, ok)
	assert.Equal(t, 3, transport.attempts)
	assert.Equal(t, []DeliveryStatus{
		StatusAttempting, StatusAttempting, StatusAttempting, StatusSent,
	}, emitter.statuses())
}

func TestSendGivesUpAfterThreeAttempts(t *testing.T) {
	transport := &fakeTransport{failures: 10}
	emitter := &fakeEmitter{}
	svc := newTestService(t, transport, emitter)

	rideID := types.ID("r1")
	ok := svc.Send(context.Background(), KindRideRejected, testRcpt,
		map[string]any{"name": "Emp", "ride_id": "r1", "reason": "no budget"}, &rideID, true)

	assert.False(t, ok)
	assert.Equal(t, 3, transport.attempts)
	statuses := emitter.statuses()
	require.Len(t, statuses, 4)
	assert.Equal(t, StatusFailed, statuses[3])

	last := emitter.events[len(emitter.events)-1]
	require.NotNil(t, last.IdentifierID)
	assert.Equal(t, rideID, *last.IdentifierID)
}

func TestSendWithoutRetryIsSingleAttempt(t *testing.T) {
	transport := &fakeTransport{failures: 10}
	emitter := &fakeEmitter{}
	svc := newTestService(t, transport, emitter)

	ok := svc.Send(context.Background(), KindPasswordReset, testRcpt,
		map[string]any{"name": "Emp", "link": "https://example.test/reset"}, nil, false)

	assert.False(t, ok)
	assert.Equal(t, 1, transport.attempts)
}

func TestBackoffDoublesAndCaps(t *testing.T) {
	assert.Equal(t, 2*time.Second, backoff(1))
	assert.Equal(t, 4*time.Second, backoff(2))
	assert.Equal(t, 8*time.Second, backoff(3))
	assert.Equal(t, 10*time.Second, backoff(4))
	assert.Equal(t, 10*time.Second, backoff(8))
}

func TestRenderUnknownKind(t *testing.T) {
	renderer, err := NewTemplateRenderer()
	require.NoError(t, err)
	_, err = renderer.Render(Kind("nonsense"), nil)
	assert.Error(t, err)
}
