// Package content publishes ciphertext to a content-addressed store.
//
// IPFSClient drives an IPFS node through go-ipfs-api, using the add,
// pin/add and cat commands. The API address may be a multiaddr such as
// /ip4/127.0.0.1/tcp/5001 or a plain http URL. Node error bodies are
// mapped to apperr codes, and ReadUpload and WriteError let in-process
// nodes speak the same wire format. MemoryStore implements the same
// contract in process and computes CIDv1 raw-leaf identifiers with
// ComputeCID.
package content
