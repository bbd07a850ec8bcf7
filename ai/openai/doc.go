// Package openai implements answer generation and groundedness scoring
// against OpenAI-compatible chat completion APIs. It works with any
// conformant server (OpenAI, Ollama, LocalAI, vLLM).
package openai
