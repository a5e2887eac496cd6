package validate

import "strings"

const maxDeviceTokenLen = 4096

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

func PositiveID(id int64) bool {
	return id > 0
}

// DeviceToken accepts FCM registration tokens: non-empty, bounded, no whitespace.
func DeviceToken(token string) bool {
	if !Required(token) || len(token) > maxDeviceTokenLen {
		return false
	}
	return !strings.ContainsAny(token, " \t\r\n")
}
