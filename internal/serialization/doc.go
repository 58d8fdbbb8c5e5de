// Package serialization implements the binary parameter file format used for
// model fixtures.
//
// The format is the .born v2 layout:
//
//	Fixed header (64 bytes):
//	  0x00  [4 bytes: Magic "BORN"]
//	  0x04  [4 bytes: Version (uint32 LE)]
//	  0x08  [4 bytes: Flags (uint32 LE)]
//	  0x0C  [4 bytes: Reserved]
//	  0x10  [8 bytes: JSON header size (uint64 LE)]
//	  0x18  [8 bytes: Tensor data size (uint64 LE)]
//	  0x20  [32 bytes: SHA-256 of tensor data]
//	0x40  [JSON header]
//	      [zero padding to a 64-byte boundary]
//	      [tensor data: raw little-endian bytes, ordered by tensor name]
//
// Example usage:
//
//	// Save a state dictionary
//	w, err := serialization.NewWriter("model.pt")
//	if err != nil {
//	    return err
//	}
//	if err := w.WriteStateDict(model.StateDict(), serialization.Header{ModelType: "Linear"}); err != nil {
//	    _ = w.Close()
//	    return err
//	}
//	if err := w.Close(); err != nil {
//	    return err
//	}
//
//	// Load it back
//	r, err := serialization.NewReader("model.pt")
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//	stateDict, err := r.ReadStateDict()
package serialization
