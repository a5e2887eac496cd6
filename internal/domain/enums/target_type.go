package enums

type TargetType string

const (
	TargetTypeProperty TargetType = "property"
	TargetTypeRoommate TargetType = "roommate"
)

func (t TargetType) Valid() bool {
	switch t {
	case TargetTypeProperty, TargetTypeRoommate:
		return true
	default:
		return false
	}
}
