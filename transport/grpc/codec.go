package grpc

import "encoding/json"

// jsonCodec implements grpc/encoding.Codec over JSON instead of protobuf
// wire format. The corpus reaches for protoc-generated messages and a
// generated .pb.go; without a protoc invocation available here, the
// service is instead described by hand (see desc.go) and every message
// on the wire is exchanged as JSON through this codec, registered with
// grpc.ForceServerCodec / grpc.ForceCodec at dial/serve time.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string { return "json" }
