//go:build !cgo

package store

import _ "github.com/glebarez/go-sqlite"

const driverName = "sqlite"
