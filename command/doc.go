// Package command runs an external model command once per request.
//
// The prompt is written to the command's stdin and the summary is read from
// stdout after the process exits. The default invocation is
//
//	ollama run mistral
//
// but any program with the same contract works, such as a llama.cpp CLI
// wrapper script. The command has no way to receive stop sequences or a
// token limit, so stop sequences are applied to the captured output and
// MaxTokens is left to the command's own configuration.
//
// # Usage
//
//	client := command.NewClient(
//	    command.WithCommand("ollama"),
//	    command.WithArgs("run"),
//	    command.WithModel("mistral"),
//	)
//	resp, err := client.Complete(ctx, provider.Request{Prompt: p})
//
// Or through the registry:
//
//	import _ "github.com/randalmurphal/summarize/command"
//
//	client, err := provider.New("command", provider.Config{Command: "ollama", Args: []string{"run"}, Model: "mistral"})
package command
