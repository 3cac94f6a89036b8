// Package prompt builds the context block handed to the generation client.
// Assembly is a pure function over its inputs so the same retrieval result,
// plugin output and history window always produce the same block.
package prompt

import (
	"fmt"
	"strings"

	"github.com/docuchat/docuchat/core"
)

// SystemInstruction is the fixed instruction sent with every generation
// request.
const SystemInstruction = "You are a helpful assistant. Be concise. " +
	"Use the provided context to answer when it is relevant. " +
	"If plugin output is included, mention that you used it. " +
	"Keep a friendly tone."

// Assemble combines retrieved chunks, plugin output and the recent history
// window into one ordered text block. Section order is fixed: documents,
// then plugin output, then conversation history. A section whose input is
// empty is omitted entirely; sections are joined with a blank line.
//
// Chunks are rendered in input order (retrieval's descending-score order);
// history is rendered oldest-first as provided by the session store.
func Assemble(chunks []core.RetrievedChunk, pluginOutput string, history []core.Message) string {
	var sections []string

	if len(chunks) > 0 {
		var b strings.Builder
		b.WriteString("Relevant Documents:")
		for i, chunk := range chunks {
			fmt.Fprintf(&b, "\n[Document %d from %s]: %s", i+1, chunk.Source, chunk.Content)
		}
		sections = append(sections, b.String())
	}

	if pluginOutput != "" {
		sections = append(sections, "Plugin Output: "+pluginOutput)
	}

	if len(history) > 0 {
		var b strings.Builder
		b.WriteString("Conversation History:")
		for _, msg := range history {
			speaker := "User"
			if msg.Role == core.RoleAssistant {
				speaker = "AI"
			}
			fmt.Fprintf(&b, "\n%s: %s", speaker, msg.Content)
		}
		sections = append(sections, b.String())
	}

	return strings.Join(sections, "\n\n")
}
