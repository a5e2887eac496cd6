package model

import (
	"errors"
	"strings"

	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/enums"
)

var ErrInvalidTarget = errors.New("invalid swipe target")

// Target identifies what a swipe or favorite points at. The zero value is invalid;
// build one with PropertyTarget, RoommateTarget or ParseTarget.
type Target struct {
	kind enums.TargetType
	id   int64
}

func PropertyTarget(id int64) Target {
	return Target{kind: enums.TargetTypeProperty, id: id}
}

func RoommateTarget(id int64) Target {
	return Target{kind: enums.TargetTypeRoommate, id: id}
}

func ParseTarget(kind string, id int64) (Target, error) {
	var t Target
	switch enums.TargetType(strings.ToLower(strings.TrimSpace(kind))) {
	case enums.TargetTypeProperty:
		t = PropertyTarget(id)
	case enums.TargetTypeRoommate:
		t = RoommateTarget(id)
	default:
		return Target{}, ErrInvalidTarget
	}
	if !t.Valid() {
		return Target{}, ErrInvalidTarget
	}
	return t, nil
}

func (t Target) Type() enums.TargetType { return t.kind }

func (t Target) ID() int64 { return t.id }

func (t Target) IsRoommate() bool { return t.kind == enums.TargetTypeRoommate }

func (t Target) IsProperty() bool { return t.kind == enums.TargetTypeProperty }

func (t Target) Valid() bool {
	return t.kind.Valid() && t.id > 0
}
