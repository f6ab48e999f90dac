// Package bridge relays a payload from the home ledger to another chain.
//
// The flow mirrors a guardian-attested bridge:
//
//  1. Attest posts the payload to the bridge program on the source ledger
//     and returns a handle (chain, emitter, sequence) once confirmed.
//  2. Await polls the guardian for the signed VAA of that handle with
//     bounded exponential backoff.
//  3. Deliver submits the VAA to the bridge program on the destination
//     ledger. Redelivery of a claimed VAA succeeds without effect.
//
// A message moves Pending -> Attested -> Relayed, or to Failed. Attestation
// completes out of band, so Await is the only step that waits.
package bridge
