package hub

import (
	"sync"

	"github.com/transit-favorites/internal/domain"
)

// Subscription - подписка на один слот. Значения читаются из Updates();
// nil означает, что слот пуст. Канал закрывается после Close.
type Subscription struct {
	hub  *Hub
	slot domain.SlotKey
	id   uint64

	mu      sync.Mutex
	queue   []*domain.FavoriteLocation
	version int64 // последняя поставленная в очередь версия
	closed  bool

	out    chan *domain.FavoriteLocation
	notify chan struct{}
	done   chan struct{}
	once   sync.Once
}

func newSubscription(h *Hub, slot domain.SlotKey, id uint64) *Subscription {
	return &Subscription{
		hub:    h,
		slot:   slot,
		id:     id,
		out:    make(chan *domain.FavoriteLocation),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Slot возвращает ключ слота подписки
func (s *Subscription) Slot() domain.SlotKey {
	return s.slot
}

// Updates - канал значений слота
func (s *Subscription) Updates() <-chan *domain.FavoriteLocation {
	return s.out
}

// Done закрывается после Close
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close отписывает наблюдателя. Повторный вызов безопасен.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.unsubscribe(s)

		s.mu.Lock()
		s.closed = true
		s.queue = nil
		s.mu.Unlock()

		close(s.done)
	})
}

// offer ставит значение в очередь, если его версия новее уже поставленных
func (s *Subscription) offer(v *domain.FavoriteLocation, version int64) bool {
	s.mu.Lock()
	if s.closed || version <= s.version {
		s.mu.Unlock()
		return false
	}
	s.version = version
	s.queue = append(s.queue, v.Clone())
	s.mu.Unlock()

	s.wake()
	return true
}

func (s *Subscription) enqueue(v *domain.FavoriteLocation) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, v)
	s.mu.Unlock()

	s.wake()
}

func (s *Subscription) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// pump переносит значения из очереди в out по одному
func (s *Subscription) pump() {
	defer close(s.out)

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.notify:
				continue
			case <-s.done:
				return
			}
		}
		v := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- v:
		case <-s.done:
			return
		}
	}
}
