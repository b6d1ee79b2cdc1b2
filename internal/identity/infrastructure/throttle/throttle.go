// Package throttle locks usernames out after repeated failed logins.
package throttle

import "time"

// Policy decides when a username is locked and for how long.
type Policy struct {
	MaxAttempts int
	Lockout     time.Duration
}

// DefaultPolicy locks a username for 15 minutes after 5 failures.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 5, Lockout: 15 * time.Minute}
}

func (p Policy) normalized() Policy {
	def := DefaultPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.Lockout <= 0 {
		p.Lockout = def.Lockout
	}
	return p
}
