// Package mcp implements the stdio tool server protocol.
//
// The package has three parts:
//
//  1. Channel: reads and writes Content-Length framed JSON-RPC 2.0 messages
//     on a single byte stream. Exactly one logical writer exists in the
//     process (the dispatcher), and each outgoing message is emitted as one
//     atomic write so frames can never interleave.
//
//  2. Registry: the fixed catalog of eight browser automation tools. The
//     catalog is built once at startup and never changes, so tools/list is
//     referentially stable for the process lifetime.
//
//  3. Server: the dispatch loop. It reads one message, routes it by method,
//     invokes the execution bridge for tool calls, writes the response, and
//     only then reads the next message. Tool-level failures are always
//     reported in-band (isError:true in a successful response); only
//     protocol-level problems (unknown method, unknown tool, unparseable
//     body) become JSON-RPC error objects.
//
// Diagnostics go to the logging side channel, never onto the protocol
// stream.
package mcp
