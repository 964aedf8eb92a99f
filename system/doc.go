/*
Package system implements the native value transfer program.

Every account starts owned by the system program. It can create an account
with a given size and owner, hand ownership of an empty account over to
another program and move lamports between accounts it owns.

Instructions are a little endian uint32 tag followed by the fixed size
arguments of the request.
*/
package system
