/*
Package custodytest provides helpers for testing programs and the runtime:
deterministic keys, account builders and a host that runs nested
invocations in memory.
*/
package custodytest
