package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Errors surfaced by the ledger programs. Codes are part of the receipt and
// must stay stable.
var (
	// ErrInvalidArgument is returned when an instruction argument is
	// syntactically correct but semantically unusable, ie. a transfer source
	// that carries data.
	ErrInvalidArgument = Register(2, "invalid argument")

	// ErrInvalidInstructionData is returned when the instruction bytes
	// cannot be decoded into any known request.
	ErrInvalidInstructionData = Register(3, "invalid instruction data")

	// ErrInvalidAccountData is returned when account data cannot be
	// decoded or a referenced identity does not match the stored one.
	ErrInvalidAccountData = Register(4, "invalid account data")

	// ErrAccountDataTooSmall is returned when the account data buffer is
	// shorter than the record that must be written into it.
	ErrAccountDataTooSmall = Register(5, "account data too small")

	// ErrInsufficientFunds is returned when a debit would take a balance
	// below zero.
	ErrInsufficientFunds = Register(6, "insufficient funds")

	// ErrIncorrectProgramID is returned when an account is not owned by
	// the program that tries to use it.
	ErrIncorrectProgramID = Register(7, "incorrect program id")

	// ErrMissingRequiredSignature is returned when a party that must
	// authorize the instruction did not sign it.
	ErrMissingRequiredSignature = Register(8, "missing required signature")

	// ErrAccountAlreadyInitialized is returned when an instruction would
	// initialize state that already exists.
	ErrAccountAlreadyInitialized = Register(9, "account already initialized")

	// ErrUninitializedAccount is returned when an account holds no
	// initialized state.
	ErrUninitializedAccount = Register(10, "uninitialized account")

	// ErrNotEnoughAccountKeys is returned when an instruction was given
	// fewer accounts than it requires.
	ErrNotEnoughAccountKeys = Register(11, "not enough account keys")

	// ErrMaxSeedLengthExceeded is returned when a derivation seed is too
	// long or there are too many seeds.
	ErrMaxSeedLengthExceeded = Register(12, "max seed length exceeded")

	// ErrInvalidSeeds is returned when seeds do not derive a valid
	// program address or the derived address differs from the supplied one.
	ErrInvalidSeeds = Register(13, "invalid seeds")

	// ErrAccountAlreadyInUse is returned by the system program when an
	// account to be created already holds value or data.
	ErrAccountAlreadyInUse = Register(14, "account already in use")

	// ErrPrivilegeEscalation is returned when a nested invocation asks for
	// a signer or writable privilege the caller does not have.
	ErrPrivilegeEscalation = Register(15, "privilege escalation")

	// ErrExternalAccountLamportSpend is returned when a program debits an
	// account it does not own.
	ErrExternalAccountLamportSpend = Register(16, "external account lamport spend")

	// ErrExternalAccountDataModified is returned when a program modifies
	// the data of an account it does not own.
	ErrExternalAccountDataModified = Register(17, "external account data modified")

	// ErrReadonlyLamportChange is returned when the balance of an account
	// not marked writable changes.
	ErrReadonlyLamportChange = Register(18, "readonly lamport change")

	// ErrReadonlyDataModified is returned when the data of an account not
	// marked writable changes.
	ErrReadonlyDataModified = Register(19, "readonly data modified")

	// ErrUnbalancedInstruction is returned when the sum of all balances
	// changed during an instruction.
	ErrUnbalancedInstruction = Register(20, "sum of account balances before and after instruction do not match")

	// ErrInvalidSignature is returned when a transaction signature does
	// not verify.
	ErrInvalidSignature = Register(21, "invalid signature")

	// ErrUnknownProgram is returned when an instruction targets a program
	// that is not registered with the runtime.
	ErrUnknownProgram = Register(22, "unknown program")

	// ErrInvalidInput is returned for malformed configuration or client
	// input that never reaches a program.
	ErrInvalidInput = Register(23, "invalid input")

	// ErrDatabase is returned when the underlying store fails.
	ErrDatabase = Register(24, "database")

	// ErrModifiedProgramID is returned when an account changed owner
	// without the consent of its current owner.
	ErrModifiedProgramID = Register(26, "instruction modified the program id of an account")

	// ErrCallDepth is returned when nested invocations go deeper than the
	// runtime allows.
	ErrCallDepth = Register(27, "call depth exceeded")

	// ErrInvalidSequence is returned when a signed transaction does not
	// carry a nonce above the last one used by each of its signers.
	ErrInvalidSequence = Register(28, "invalid sequence")

	// ErrHuman is returned when application reaches a code path which should not
	// ever be reached if the code was written as expected by the framework
	ErrHuman = Register(25, "coding error")

	// ErrPanic is only set when we recover from a panic, so we know to
	// redact potentially sensitive system info
	ErrPanic = Register(111222, "panic")
)

// Register returns an error instance that should be used as the base for
// creating error instances during runtime.
//
// Popular root errors are declared in this package, but programs may want to
// declare custom codes. This function ensures that no error code is used
// twice. Attempt to reuse an error code results in panic.
//
// Use this function only during a program startup phase.
func Register(code uint32, description string) *Error {
	if e, ok := usedCodes[code]; ok {
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, e.desc))
	}
	err := &Error{
		code: code,
		desc: description,
	}
	usedCodes[err.code] = err
	return err
}

// usedCodes is keeping track of used codes to ensure their uniqueness. No two
// error instances should share the same error code.
var usedCodes = map[uint32]*Error{
	1: nil, // Error code 1 is restricted for internal errors and must not be used.
}

// Error represents a root error.
//
// Each instance created during the runtime should wrap one of the declared
// root errors. This allows error tests and returning all errors to the
// client in a safe manner.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

// Code returns the receipt code of this error.
func (e Error) Code() uint32 {
	return e.code
}

// New returns a new error. Returned instance is having the root cause set to
// this error. Below two lines are equal
//   e.New("my description")
//   Wrap(e, "my description")
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Newf is basically New with formatting capabilities
func (e *Error) Newf(description string, args ...interface{}) error {
	return e.New(fmt.Sprintf(description, args...))
}

// Is check if given error instance is of a given kind/type. This involves
// unwrapping given error using the Cause method if available.
func (kind *Error) Is(err error) bool {
	// Reflect usage is necessary to correctly compare with
	// a nil implementation of an error.
	if kind == nil {
		if err == nil {
			return true
		}
		return reflect.ValueOf(err).IsNil()
	}

	for {
		if err == kind {
			return true
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return false
		}
	}
}

// Wrap extends given error with an additional information.
//
// If the wrapped error does not provide a Code method (ie. stdlib errors),
// it will be labeled as internal error.
//
// If err is nil, this returns nil, avoiding the need for an if statement when
// wrapping a error returned at the end of a function
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}

	// If this error does not carry the stacktrace information yet, attach
	// one. This should be done only once per error at the lowest frame
	// possible (most inner wrap).
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}

	return &wrappedError{
		parent: err,
		msg:    description,
	}
}

// Wrapf extends given error with an additional information.
//
// This function works like Wrap function with additional funtionality of
// formatting the input as specified.
func Wrapf(err error, format string, args ...interface{}) error {
	desc := fmt.Sprintf(format, args...)
	return Wrap(err, desc)
}

type wrappedError struct {
	// This error layer description.
	msg string
	// The underlying error that triggered this one.
	parent error
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("%s: %s", e.msg, e.parent.Error())
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Format prints the whole chain, including the stack trace of the innermost
// frame when %+v is used.
func (e *wrappedError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s: %+v", e.msg, e.parent)
		return
	}
	fmt.Fprint(s, e.Error())
}

// Recover captures a panic and stop its propagation. If panic happens it is
// transformed into a ErrPanic instance and assigned to given error. Call this
// function using defer in order to work as expected.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// causer is an interface implemented by an error that supports wrapping. Use
// it to test if an error wraps another error instance.
type causer interface {
	Cause() error
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// stackTrace returns the first found stack trace frame carried by given error
// or any wrapped error. It returns nil if no stack trace is found.
func stackTrace(err error) errors.StackTrace {
	for {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return nil
		}
	}
}
