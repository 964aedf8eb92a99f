/*
Package errors implements custom error interfaces for the ledger runtime and
its programs.

Error declarations should be generic and cover broad range of cases. Each
returned error instance can wrap a generic error declaration to provide more
details.

This package provides a broad range of errors declared that fits all common
cases. If an error is very specific for a program it can be registered the
same way as those in this package.

  var ErrNoTaker = errors.Register(4300, "no taker")

Each error declaration has a code that ends up in the transaction receipt, so
a client can tell two failures apart without parsing the message.

Use Wrap and Wrapf to add context while keeping the root error:

  if !initializer.IsSigner {
    return errors.Wrap(errors.ErrMissingRequiredSignature, "initializer")
  }

and test the kind of an error with the Is method:

  if errors.ErrInsufficientFunds.Is(err) { ... }
*/
package errors
