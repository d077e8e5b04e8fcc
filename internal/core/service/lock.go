package service

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"studiopanel/internal/core/domain"
)

type LockState int

const (
	NoPasswordSet LockState = iota
	Locked
	Unlocked
)

func (s LockState) String() string {
	switch s {
	case NoPasswordSet:
		return "no_password"
	case Locked:
		return "locked"
	default:
		return "unlocked"
	}
}

// Lock gates mutation of the customization document behind a locally
// verified password hash. This is a deterrent against casual fiddling
// on a shared tablet, not a security boundary: no salt, no rate
// limiting, and the hash travels with the settings document.
type Lock struct {
	state LockState
	hash  string
}

// NewLock restores the lock from the stored hash. A non-empty hash
// starts locked; an empty one means no password has been set yet.
func NewLock(storedHash string) *Lock {
	if storedHash == "" {
		return &Lock{state: NoPasswordSet}
	}
	return &Lock{state: Locked, hash: storedHash}
}

func (l *Lock) State() LockState {
	return l.state
}

func (l *Lock) Hash() string {
	return l.hash
}

// CanEdit reports whether customization mutations are allowed. Before
// any password exists the panel is editable, with the UI prompting to
// set one.
func (l *Lock) CanEdit() bool {
	return l.state != Locked
}

// SetPassword sets or replaces the password, leaving the lock open.
// Valid from NoPasswordSet (first use) and Unlocked (change); from
// Locked the caller must unlock first.
func (l *Lock) SetPassword(password string) error {
	if l.state == Locked {
		return domain.ErrLocked
	}
	trimmed := strings.TrimSpace(password)
	if trimmed == "" {
		return &domain.ValidationError{Reason: "password must not be empty"}
	}
	l.hash = Digest(password)
	l.state = Unlocked
	return nil
}

// Attempt tries to open the lock. On mismatch the state is unchanged.
// There is no lockout or attempt counting.
func (l *Lock) Attempt(password string) error {
	if l.state != Locked {
		return nil
	}
	if Digest(password) != l.hash {
		return domain.ErrIncorrectPassword
	}
	l.state = Unlocked
	return nil
}

// Relock engages the lock. Without a stored password there is nothing
// to lock behind, so it is a no-op.
func (l *Lock) Relock() {
	if l.hash != "" {
		l.state = Locked
	}
}

// Digest is SHA-256 over the UTF-8 bytes of the trimmed password,
// rendered as lowercase hex.
func Digest(password string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(password)))
	return hex.EncodeToString(sum[:])
}
