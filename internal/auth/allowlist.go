package auth

import (
	"sort"
	"strings"
	"sync"
)

// AllowList holds the admin emails. It is safe for concurrent use and can be
// replaced at runtime when the configuration is reloaded.
type AllowList struct {
	mu     sync.RWMutex
	emails map[string]struct{}
}

func NewAllowList(emails []string) *AllowList {
	l := &AllowList{}
	l.Replace(emails)
	return l
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (l *AllowList) Replace(emails []string) {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		if e = normalizeEmail(e); e != "" {
			set[e] = struct{}{}
		}
	}
	l.mu.Lock()
	l.emails = set
	l.mu.Unlock()
}

func (l *AllowList) Contains(email string) bool {
	email = normalizeEmail(email)
	if email == "" {
		return false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.emails[email]
	return ok
}

func (l *AllowList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.emails)
}

func (l *AllowList) Emails() []string {
	l.mu.RLock()
	out := make([]string, 0, len(l.emails))
	for e := range l.emails {
		out = append(out, e)
	}
	l.mu.RUnlock()
	sort.Strings(out)
	return out
}
