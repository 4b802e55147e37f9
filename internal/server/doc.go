// Package server implements the MCP (Model Context Protocol) server for text
// mockup recognition.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Recognition:
//   - mockup_parse: Recognize mockup text or a mockup file
//   - mockup_import_image: OCR a screenshot into text, then recognize it
//   - mockup_forget: Release a model handle
//
// Model Queries:
//   - mockup_model: The whole component model
//   - mockup_component: One component with ancestors and children
//   - mockup_components_by_type: Components of one type
//   - mockup_relationships: Adjacency and label edges
//
// Rendering:
//   - mockup_render_text: Repaint the mockup, or list the component tree
//   - mockup_preview: PNG with component outlines colored by type
//
// Patterns:
//   - mockup_patterns: List registered patterns
//   - mockup_register_patterns: Add patterns at runtime
//
// # Model Handles
//
// Every recognized model is kept in memory under a random UUID handle that
// the query tools take. The oldest models are dropped once the cache is full.
// Mockup files are cached by path; pass reload to re-read a file.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv, err := server.New(cfg, logger, version)
//	if err != nil {
//	    return err
//	}
//	return srv.Run(ctx)
package server
