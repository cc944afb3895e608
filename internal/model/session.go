package model

import "time"

// Session is the payload a bearer token resolves to. Tokens are opaque
// to callers; the session cache maps a token hash to this structure so
// the credential scheme can change without touching the services that
// consume the resolved user.
type Session struct {
	UserID   int64     `json:"user_id"`
	Username string    `json:"username"`
	IssuedAt time.Time `json:"issued_at"`
}
