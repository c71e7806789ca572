// Package variables implements the gRPC transport for controller variables.
//
// The service is declared by hand over protobuf well-known types: a read
// takes the variable name as a StringValue and returns a Value, a write takes
// a Struct with "name" and "value" fields. Operator identity travels as
// request metadata.
package variables
