package stormbinc

import (
	"github.com/ugorji/go/codec"
)

// Codec that encodes to and decodes from Binc.
// See https://github.com/ugorji/binc
var Codec = &bincCodec{handle: new(codec.BincHandle)}

type bincCodec struct {
	handle *codec.BincHandle
}

func (c *bincCodec) Marshal(v any) (b []byte, err error) {
	err = codec.NewEncoderBytes(&b, c.handle).Encode(v)
	return b, err
}

func (c *bincCodec) Unmarshal(b []byte, v any) error {
	return codec.NewDecoderBytes(b, c.handle).Decode(v)
}

func (c *bincCodec) Name() string {
	return "binc"
}
