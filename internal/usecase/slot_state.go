package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/transit-favorites/internal/domain"
)

// Состояния слота
const (
	SlotStateAbsent  = "absent"
	SlotStatePresent = "present"
)

// События слота
const (
	SlotEventPut    = "put"
	SlotEventRemove = "remove"
)

var slotEvents = fsm.Events{
	{Name: SlotEventPut, Src: []string{SlotStateAbsent, SlotStatePresent}, Dst: SlotStatePresent},
	{Name: SlotEventRemove, Src: []string{SlotStatePresent}, Dst: SlotStateAbsent},
}

// slotChange вычисляет тип изменения слота по его состоянию до записи.
// put на занятом слоте - замена, remove на пустом - ничего не произошло.
func slotChange(ctx context.Context, existed bool, event string) (domain.ChangeType, error) {
	initial := SlotStateAbsent
	if existed {
		initial = SlotStatePresent
	}

	machine := fsm.NewFSM(initial, slotEvents, fsm.Callbacks{})

	err := machine.Event(ctx, event)

	var noTransition fsm.NoTransitionError
	var invalidEvent fsm.InvalidEventError
	switch {
	case err == nil:
		if machine.Current() == SlotStatePresent {
			return domain.ChangeInserted, nil
		}
		return domain.ChangeRemoved, nil
	case errors.As(err, &noTransition):
		return domain.ChangeReplaced, nil
	case errors.As(err, &invalidEvent):
		return domain.ChangeNoop, nil
	default:
		return "", fmt.Errorf("slot event %s: %w", event, err)
	}
}
