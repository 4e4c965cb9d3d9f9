// Package version reports build information. Values are injected with
//
//	go build -ldflags "-X github.com/ncobase/taskdesk/version.Version=v1.0.0"
package version
