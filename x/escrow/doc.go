/*
Package escrow implements a two party escrow program.

> An escrow is a financial arrangement where a third party holds and regulates
> payment of the funds required for two parties involved in a given transaction.

Here the third party is the program itself. The initializer creates an
escrow record for a taker and an amount, then deposits the amount into the
escrow account. Both parties together release the funds to the taker.

The escrow account lives at a program derived address computed from the
seed "escrow" and the initializer key, so every initializer has exactly one
escrow per bump. The account holds a fixed 74 byte record:

	is_initialized (1) | initializer (32) | taker (32) | amount (8, LE) | bump (1)

Its rent reserve is never paid out, only the deposited amount is.
*/
package escrow
