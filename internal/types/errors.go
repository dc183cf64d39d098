package types

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials is returned for any failed login. Unknown usernames and
// wrong passwords are indistinguishable.
var ErrInvalidCredentials = errors.New("usuário ou senha inválidos")

// ErrGuardViolation is returned when a business rule blocks an operation
// before it reaches the store, such as deleting the bootstrap admin.
var ErrGuardViolation = errors.New("operação bloqueada")

// ErrForbidden is returned when the session principal lacks the required role.
var ErrForbidden = errors.New("acesso restrito a administradores")

// ValidationError reports malformed input caught at the point of entry.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NotFoundError reports a lookup that returned nothing.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s não encontrado: %s", e.Kind, e.Key)
}

// PersistenceFault wraps a failure of the persistence medium. It is not retried.
type PersistenceFault struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceFault) Error() string {
	return fmt.Sprintf("persistence %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceFault) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound reports whether err carries a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsPersistence reports whether err carries a *PersistenceFault.
func IsPersistence(err error) bool {
	var pf *PersistenceFault
	return errors.As(err, &pf)
}
