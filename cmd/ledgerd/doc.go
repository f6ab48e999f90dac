// Package main runs ledgerd, the development network used by zkl during
// development and tests. One process emulates one chain: an in-memory
// ledger with the registry, inbox and bridge programs deployed, a guardian
// that signs every message posted to its bridge, and an IPFS-compatible
// content store.
//
// HTTP API
//
//	GET /v1/accounts/{address}
//	    Return the account at the base58 {address} as
//	    {"address","owner","data"}. 404 with {"code":"ACCOUNT_NOT_FOUND"} if absent.
//
//	POST /v1/transactions
//	    Apply a signed transaction and return its receipt
//	    {"signature","slot","returnData"}. Program failures roll the whole
//	    transaction back and return {"code","message"} with 403 (signature or
//	    authorization), 404 (missing account), 409 (already initialized,
//	    already processed, stale state) or 422 (anything else).
//
//	GET /v1/signed_vaa/{chain}/{emitterHex}/{sequence}
//	    Return {"vaaBytes": base64} for a message posted to this chain's
//	    bridge. 404 until the message exists.
//
//	POST /api/v0/add?pin=true|false      (multipart, first part)
//	POST /api/v0/pin/add?arg={cid}
//	POST /api/v0/cat?arg={cid}
//	POST /api/v0/version
//	    The subset of the IPFS HTTP API zkl uses. Content ids are CIDv1,
//	    raw codec, sha2-256. Errors use the IPFS {"Message","Code","Type"}
//	    body.
//
//	GET /metrics
//	    Prometheus metrics.
//
//	GET /healthz
//	    {"chain","slot"}.
//
// Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - Requests are rate limited per client address; excess requests get 429.
//   - A lightweight access log records method, path, remote, status, bytes and
//     duration for each request.
//
// Configuration comes from LEDGERD_* environment variables; see config.go.
// LEDGERD_GUARDIAN_SETS lists chain:key entries naming the guardians trusted
// for each emitter chain. The default, "1:self,2:self", lets two ledgerd
// processes started with the same guardian seed and chain ids 1 and 2 form
// a bridged pair.
package main
