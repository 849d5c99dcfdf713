package login

import "errors"

// ErrInvalidCredentials is returned when the supplied password does not
// match the stored hash
var ErrInvalidCredentials = errors.New("invalid credentials")
