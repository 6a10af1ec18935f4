package instance

import "os"

// GetID returns the service instance identifier or a default value.
func GetID() string {
	if id := os.Getenv("INSTANCE_ID"); id != "" {
		return id
	}
	return "audit-0"
}
