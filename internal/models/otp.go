package models

import (
	"slices"
	"time"
)

type OTP struct {
	ID        int32     `json:"id"`
	Codes     []int32   `json:"otp"`
	CreatedAt time.Time `json:"created_at"`
}

// Contains reports whether code is one of the row's active codes.
func (o *OTP) Contains(code int32) bool {
	return slices.Contains(o.Codes, code)
}
