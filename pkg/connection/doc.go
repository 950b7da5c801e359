// Package connection reconnects a transport after connection loss.
//
// transport.Conn never retries on its own. A Supervisor owns the retry
// policy: it calls Connect, waits for the receive loop to end and tries again
// after an exponential backoff delay:
//
//  1. Initial delay: 1 second
//  2. Doubling: 2s, 4s, 8s, 16s, 32s
//  3. Maximum delay: 60 seconds
//  4. Reset to 1s after a successful connect
//
// Each delay gets up to 25% random jitter. A closed connection or an invalid
// transport config stops the supervisor immediately.
package connection
