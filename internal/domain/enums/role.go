package enums

type Role string

const (
	RoleTenant   Role = "tenant"
	RoleLandlord Role = "landlord"
)

func (r Role) Valid() bool {
	return r == RoleTenant || r == RoleLandlord
}
