package enums

type SwipeAction string

const (
	SwipeActionLike SwipeAction = "like"
	SwipeActionSkip SwipeAction = "skip"
)

func (a SwipeAction) Valid() bool {
	switch a {
	case SwipeActionLike, SwipeActionSkip:
		return true
	default:
		return false
	}
}
