package templates

import (
	"time"
)

type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		d.Time = t.UTC().Format("02 January 2006, 15:04")
	}
}

// NewEmailData fills the recipient fields and applies opts.
func NewEmailData(appName, name, username, email string, opts ...Option) EmailData {
	d := EmailData{Name: name, Username: username, Email: email, AppName: appName}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}
