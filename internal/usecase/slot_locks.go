package usecase

import (
	"sync"

	"github.com/transit-favorites/internal/domain"
)

// slotLocks - мьютекс на каждый слот. Записи в один слот идут по очереди,
// разные слоты друг друга не ждут. Неиспользуемые мьютексы удаляются.
type slotLocks struct {
	mu    sync.Mutex
	locks map[domain.SlotKey]*slotLock
}

type slotLock struct {
	sync.Mutex
	refs int
}

func newSlotLocks() *slotLocks {
	return &slotLocks{locks: make(map[domain.SlotKey]*slotLock)}
}

// lock захватывает мьютекс слота и возвращает функцию освобождения
func (l *slotLocks) lock(slot domain.SlotKey) func() {
	l.mu.Lock()
	sl, ok := l.locks[slot]
	if !ok {
		sl = &slotLock{}
		l.locks[slot] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.Lock()

	return func() {
		sl.Unlock()

		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, slot)
		}
		l.mu.Unlock()
	}
}
