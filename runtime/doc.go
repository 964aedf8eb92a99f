/*
Package runtime hosts programs on top of a key value store.

A Runtime keeps every account under its public key, verifies transaction
signatures, dispatches instructions to registered programs and checks
after each of them that the program stayed within its rights: balances are
conserved, foreign accounts are never debited or rewritten and read only
accounts never change. Nested invocations get the same checks and may only
carry privileges the caller has, or that it proves with SignerSeeds.

A transaction runs inside a savepoint. Either all of its instructions
succeed and every change is written, or nothing is.
*/
package runtime
