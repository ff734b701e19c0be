package favorite

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/transit-favorites/internal/domain"
	"github.com/transit-favorites/internal/pkg/hub"
)

func changed(t *testing.T, id string, event domain.FavoriteChangedEvent) domain.StreamMessage {
	t.Helper()
	event.EventID = uuid.New()
	event.OccurredAt = time.Now().UTC()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return domain.StreamMessage{ID: id, Data: string(data)}
}

func receive(t *testing.T, sub *hub.Subscription) *domain.FavoriteLocation {
	t.Helper()
	select {
	case v, ok := <-sub.Updates():
		require.True(t, ok, "subscription closed unexpectedly")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for update")
		return nil
	}
}

func TestChangeRelay_DeliversRemoteChanges(t *testing.T) {
	uc := newUseCase(t)
	stream := new(MockStreamRepository)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// у подписки свой контекст: отмена ctx останавливает только relay
	sub, err := uc.Watch(context.Background(), domain.FavoriteKindHome, domain.NetworkNS)
	require.NoError(t, err)
	defer sub.Close()
	assert.Nil(t, receive(t, sub))

	fav := domain.NewFavoriteLocation(domain.FavoriteKindHome, domain.NetworkNS, *stationLocation())
	fav.UID = 7

	msgs := []domain.StreamMessage{
		changed(t, "6-0", domain.FavoriteChangedEvent{
			Change: domain.ChangeInserted, Kind: domain.FavoriteKindHome, NetworkID: domain.NetworkNS,
			Favorite: &fav, Version: 1, Source: "worker-1",
		}),
		{ID: "7-0", Data: "garbage"},
		changed(t, "8-0", domain.FavoriteChangedEvent{
			Change: domain.ChangeRemoved, Kind: domain.FavoriteKindHome, NetworkID: domain.NetworkNS,
			Version: 2, Source: "worker-1",
		}),
	}

	stream.On("StreamTail", mock.Anything, domain.StreamFavoriteChanged).Return("5-0", nil).Once()
	stream.On("ReadStream", mock.Anything, domain.StreamFavoriteChanged, "5-0", mock.Anything).Return(msgs, nil).Once()
	stream.On("ReadStream", mock.Anything, domain.StreamFavoriteChanged, "8-0", mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return([]domain.StreamMessage{}, nil).Once()

	relay := NewChangeRelay(stream, uc, 10, zap.NewNop())
	err = relay.Start(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	stream.AssertExpectations(t)

	got := receive(t, sub)
	require.NotNil(t, got)
	assert.Equal(t, int64(7), got.UID)
	assert.True(t, stationLocation().Equal(got.Location))
	assert.Nil(t, receive(t, sub))
}

func TestChangeRelay_TailFailure(t *testing.T) {
	stream := new(MockStreamRepository)
	stream.On("StreamTail", mock.Anything, domain.StreamFavoriteChanged).Return("", errors.New("LOADING")).Once()

	relay := NewChangeRelay(stream, newUseCase(t), 10, zap.NewNop())
	err := relay.Start(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "tail")
}
