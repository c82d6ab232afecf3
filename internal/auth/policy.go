package auth

import "strings"

// Policy holds the set of admin emails resolved once at startup.
// Admin checks go through here instead of re-reading the environment.
type Policy struct {
	admins map[string]struct{}
}

func NewPolicy(adminEmails []string) *Policy {
	m := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			m[e] = struct{}{}
		}
	}
	return &Policy{admins: m}
}

func (p *Policy) IsAdmin(email string) bool {
	if p == nil {
		return false
	}
	_, ok := p.admins[strings.ToLower(strings.TrimSpace(email))]
	return ok
}
