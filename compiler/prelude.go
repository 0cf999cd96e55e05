package compiler

import (
	_ "embed"
	"strings"
)

// preludeSource is the embedded serializer source, spliced verbatim into
// every compile-time program and into the final compiled output. There
// is no package clause or build tag to strip, since the embedded file is
// plain-dialect Lua source, not Go, so the prelude is used as-is.
//
//go:embed runtime.lua
var preludeSource string

// Prelude returns the serializer prelude text.
func Prelude() string { return preludeSource }

// wrapEvalProgram builds the self-contained program shelled out to the
// external interpreter for one compile-time evaluation: dependencies in
// declaration order, the serializer prelude, then a trailer that writes
// the byte-dump and serialized-text artifacts.
func wrapEvalProgram(depsSource, exprSource, byteDumpPath, serializedPath string) string {
	var sb strings.Builder
	sb.WriteString(depsSource)
	if depsSource != "" && !strings.HasSuffix(depsSource, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString(Prelude())
	sb.WriteString("\n")
	sb.WriteString("local __complua_value = (function()\n  return " + exprSource + "\nend)()\n")
	sb.WriteString("local __complua_fn = function() return " + exprSource + " end\n")
	sb.WriteString("local __complua_f = io.open(" + escapeLuaPath(byteDumpPath) + ", \"wb\")\n")
	sb.WriteString("__complua_f:write(string.dump(__complua_fn))\n")
	sb.WriteString("__complua_f:close()\n")
	sb.WriteString("local __complua_g = io.open(" + escapeLuaPath(serializedPath) + ", \"wb\")\n")
	sb.WriteString("__complua_g:write(__complua_serialize(__complua_value))\n")
	sb.WriteString("__complua_g:close()\n")
	return sb.String()
}

func escapeLuaPath(path string) string {
	return `"` + strings.ReplaceAll(strings.ReplaceAll(path, `\`, `\\`), `"`, `\"`) + `"`
}
