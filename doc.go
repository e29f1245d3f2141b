// Package multiblob is a content-addressable blob store.
//
// A blob store stores arbitrarily sized sequences of bytes,
// or _blobs_,
// and indexes them by their hash,
// which is used as a unique key.
// This key is called the blob’s reference, or _ref_.
//
// A ref names both the hash algorithm and the digest,
// so a single store can hold blobs hashed different ways.
// Its printable form is produced by a Codec.
// The default codec writes refs as "&" + base64(digest) + "." + algorithm,
// for example
//
//	&yLkW1Z3x9pgOtj3VyU3hJ4pGzn4CUTsCJ2K1ZJCb0wA=.blake2s
//
// Blobs are immutable.
// Writing the same content twice yields the same ref,
// and a writer that declares the ref it expects
// is rejected if the content hashes to something else.
//
// Besides point lookups,
// a store can list its blobs
// and follow a live feed of newly added ones.
// A listing that asks for both
// produces the existing blobs,
// then a single synchronization entry,
// then each blob as it is committed.
//
// The filesystem implementation in the store/file subpackage
// is the reference backend.
// Others live alongside it in store/.
package multiblob
