package domain

import (
	"fmt"
	"strings"
	"time"
)

// FavoriteKind - вид избранного слота (дом, работа, ...)
type FavoriteKind string

const (
	FavoriteKindHome FavoriteKind = "HOME"
	FavoriteKindWork FavoriteKind = "WORK"
)

// ValidFavoriteKinds returns list of supported favorite kinds
func ValidFavoriteKinds() []FavoriteKind {
	return []FavoriteKind{FavoriteKindHome, FavoriteKindWork}
}

func (k FavoriteKind) IsValid() bool {
	for _, v := range ValidFavoriteKinds() {
		if v == k {
			return true
		}
	}
	return false
}

// ParseFavoriteKind принимает значения в любом регистре ("work", "WORK")
func ParseFavoriteKind(s string) (FavoriteKind, bool) {
	k := FavoriteKind(strings.ToUpper(strings.TrimSpace(s)))
	return k, k.IsValid()
}

// SlotKey - ключ слота избранного
type SlotKey struct {
	Kind      FavoriteKind
	NetworkID NetworkID
}

func (k SlotKey) String() string {
	return fmt.Sprintf("%s:%s", k.Kind, k.NetworkID)
}

// FavoriteLocation - текущее значение слота (kind, network). В хранилище
// для каждой пары не больше одной строки.
type FavoriteLocation struct {
	UID       int64        `json:"uid" validate:"gte=0"`
	Kind      FavoriteKind `json:"kind" validate:"required,favorite_kind"`
	NetworkID NetworkID    `json:"network_id" validate:"required,network_id"`
	Location
	UpdatedAt time.Time `json:"updated_at"`
}

// NewFavoriteLocation оборачивает локацию в запись избранного
func NewFavoriteLocation(kind FavoriteKind, network NetworkID, l Location) FavoriteLocation {
	return FavoriteLocation{
		Kind:      kind,
		NetworkID: network,
		Location:  NewLocation(l.Type, l.ID, l.Point, l.Place, l.Name, l.Products),
	}
}

// Slot возвращает ключ слота записи
func (f FavoriteLocation) Slot() SlotKey {
	return SlotKey{Kind: f.Kind, NetworkID: f.NetworkID}
}

// ChangeType - что произошло со слотом после записи
type ChangeType string

const (
	ChangeInserted ChangeType = "INSERTED"
	ChangeReplaced ChangeType = "REPLACED"
	ChangeRemoved  ChangeType = "REMOVED"
	ChangeNoop     ChangeType = "NOOP"
)

// Clone возвращает независимую копию записи
func (f *FavoriteLocation) Clone() *FavoriteLocation {
	if f == nil {
		return nil
	}
	cp := *f
	cp.Location = NewLocation(f.Type, f.ID, f.Point, f.Place, f.Name, f.Products)
	return &cp
}
