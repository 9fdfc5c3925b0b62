// Package quote decodes streamed pricing frames into sparse Quote records.
//
// A frame is base64 text wrapping a protobuf-style message with a fixed
// schema of 33 fields (see Field). Only fields present on the wire are set
// on the resulting Quote; an unset field is reported through the second
// return value of its accessor and is never confused with a zero value.
// Unknown field numbers are skipped by wire type, so newer feeds keep
// decoding with this schema.
package quote
