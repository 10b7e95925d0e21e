package stormcbor

import (
	"github.com/ugorji/go/codec"
)

// Codec that encodes to and decodes from CBOR (Concise Binary Object Representation).
// http://cbor.io/
// https://tools.ietf.org/html/rfc7049
var Codec = &cborCodec{handle: new(codec.CborHandle)}

type cborCodec struct {
	handle *codec.CborHandle
}

func (c *cborCodec) Marshal(v any) (b []byte, err error) {
	err = codec.NewEncoderBytes(&b, c.handle).Encode(v)
	return b, err
}

func (c *cborCodec) Unmarshal(b []byte, v any) error {
	return codec.NewDecoderBytes(b, c.handle).Decode(v)
}

func (c *cborCodec) Name() string {
	return "cbor"
}
