// Package mcp exposes the directory to MCP clients over stdio.
//
// Tools search and fetch records, every Claude.md config and tool is a
// readable resource, and every prompt template is an MCP prompt whose
// arguments are the template's variables.
package mcp
