// Package service implements the application logic between the HTTP API and
// the store.
package service

import (
	"github.com/shelfshare/shelfshare-server/internal/validation"
)

// validate is the shared request validator for all services.
var validate = validation.New()
