package hub

import (
	"sync"

	"github.com/transit-favorites/internal/domain"
	"go.uber.org/zap"
)

// Hub рассылает новые значения слотов подписчикам.
// Каждый подписчик получает все значения своего слота по порядку и без потерь:
// у подписки своя очередь, поэтому медленный читатель не тормозит остальных.
//
// Значения несут версию слота. Подписка запоминает последнюю доставленную
// версию и пропускает всё, что не новее: запоздавшее событие другого
// процесса не может вернуть наблюдателю старое значение.
type Hub struct {
	logger *zap.Logger

	mu     sync.RWMutex
	subs   map[domain.SlotKey]map[uint64]*Subscription
	nextID uint64
}

// NewHub создает Hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger: logger,
		subs:   make(map[domain.SlotKey]map[uint64]*Subscription),
	}
}

// Subscribe регистрирует подписчика слота. initial с версией version попадает
// в очередь первым (nil - слот пуст). Вызывающий отвечает за то, чтобы между
// чтением initial и регистрацией не было записи в слот этим процессом.
func (h *Hub) Subscribe(slot domain.SlotKey, initial *domain.FavoriteLocation, version int64) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := newSubscription(h, slot, h.nextID)
	sub.enqueue(initial.Clone())
	sub.version = version

	bySlot, ok := h.subs[slot]
	if !ok {
		bySlot = make(map[uint64]*Subscription)
		h.subs[slot] = bySlot
	}
	bySlot[sub.id] = sub

	h.logger.Debug("Watcher subscribed",
		zap.String("slot", slot.String()),
		zap.Int("watchers", len(bySlot)))

	go sub.pump()
	return sub
}

// Publish ставит значение версии version в очередь каждого подписчика слота,
// который ещё не видел эту или более новую версию. Не блокируется.
// Возвращает число подписчиков, получивших значение.
func (h *Hub) Publish(slot domain.SlotKey, value *domain.FavoriteLocation, version int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, sub := range h.subs[slot] {
		if sub.offer(value, version) {
			delivered++
		}
	}
	return delivered
}

// Watchers возвращает число активных подписчиков слота
func (h *Hub) Watchers(slot domain.SlotKey) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[slot])
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	bySlot, ok := h.subs[sub.slot]
	if !ok {
		return
	}
	delete(bySlot, sub.id)
	if len(bySlot) == 0 {
		delete(h.subs, sub.slot)
	}

	h.logger.Debug("Watcher unsubscribed",
		zap.String("slot", sub.slot.String()),
		zap.Int("watchers", len(bySlot)))
}

// CloseAll закрывает все подписки (остановка сервера)
func (h *Hub) CloseAll() {
	h.mu.RLock()
	all := make([]*Subscription, 0)
	for _, bySlot := range h.subs {
		for _, sub := range bySlot {
			all = append(all, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range all {
		sub.Close()
	}

	if len(all) > 0 {
		h.logger.Info("Watchers closed", zap.Int("count", len(all)))
	}
}
