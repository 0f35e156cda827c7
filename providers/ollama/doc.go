// Package ollama is a minimal client for Ollama's native chat API.
//
// [Client.Chat] posts {model, messages:[{role:"user"}], stream:false} to the
// configured endpoint and normalises the reply with [ParseReply]: an "error"
// field fails the attempt, otherwise message.content wins over response, and
// an unrecognised reply is returned as its JSON text. Each prompt gets up to
// three attempts, each bounded by its own timeout.
package ollama
